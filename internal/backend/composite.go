package backend

import (
	"context"
	"sort"
	"strings"
)

// CompositeBackend routes each path to the backend registered for its
// longest matching prefix, falling back to a default backend.
//
// A route prefix such as "/memories/" is stripped before the request reaches
// the routed backend, so "/memories/notes.md" is stored there as "/notes.md".
type CompositeBackend struct {
	fallback Backend
	routes   []route
}

type route struct {
	prefix  string
	backend Backend
}

func NewCompositeBackend(fallback Backend, routes map[string]Backend) *CompositeBackend {
	c := &CompositeBackend{fallback: fallback}
	for prefix, b := range routes {
		cleaned, err := CleanPath(prefix)
		if err != nil || cleaned == "/" {
			continue
		}
		c.routes = append(c.routes, route{prefix: cleaned + "/", backend: b})
	}
	sort.Slice(c.routes, func(i, j int) bool {
		return len(c.routes[i].prefix) > len(c.routes[j].prefix)
	})
	return c
}

// Routes returns the configured route prefixes, longest first.
func (c *CompositeBackend) Routes() []string {
	ret := make([]string, 0, len(c.routes))
	for _, r := range c.routes {
		ret = append(ret, r.prefix)
	}
	return ret
}

// match returns the backend for p and the path to hand it, plus the prefix
// to restore on results ("" for the fallback).
func (c *CompositeBackend) match(p string) (Backend, string, string, error) {
	cleaned, err := CleanPath(p)
	if err != nil {
		return nil, "", "", err
	}
	for _, r := range c.routes {
		if cleaned+"/" == r.prefix {
			return r.backend, "/", r.prefix, nil
		}
		if strings.HasPrefix(cleaned, r.prefix) {
			return r.backend, "/" + strings.TrimPrefix(cleaned, r.prefix), r.prefix, nil
		}
	}
	return c.fallback, cleaned, "", nil
}

func (c *CompositeBackend) List(ctx context.Context, dir string) ([]FileInfo, error) {
	b, inner, prefix, err := c.match(dir)
	if err != nil {
		return nil, err
	}
	infos, err := b.List(ctx, inner)
	if err != nil {
		return nil, err
	}
	if prefix != "" {
		base := strings.TrimSuffix(prefix, "/")
		for i := range infos {
			infos[i].Path = base + infos[i].Path
		}
		return infos, nil
	}

	if inner == "/" {
		seen := make(map[string]bool, len(infos))
		for _, info := range infos {
			seen[info.Path] = true
		}
		for _, r := range c.routes {
			if strings.Count(r.prefix, "/") == 2 && !seen[r.prefix] {
				infos = append(infos, FileInfo{Path: r.prefix, IsDir: true})
			}
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	}
	return infos, nil
}

func (c *CompositeBackend) Read(ctx context.Context, filePath string) (string, error) {
	b, inner, _, err := c.match(filePath)
	if err != nil {
		return "", err
	}
	return b.Read(ctx, inner)
}

func (c *CompositeBackend) Write(ctx context.Context, filePath, content string) error {
	b, inner, _, err := c.match(filePath)
	if err != nil {
		return err
	}
	return b.Write(ctx, inner, content)
}

func (c *CompositeBackend) Edit(ctx context.Context, filePath, oldString, newString string, replaceAll bool) (int, error) {
	b, inner, _, err := c.match(filePath)
	if err != nil {
		return 0, err
	}
	return b.Edit(ctx, inner, oldString, newString, replaceAll)
}
