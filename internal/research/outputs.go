package research

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/MimeLyc/deep-research-agent/pkg/file"
	"github.com/MimeLyc/deep-research-agent/pkg/log"
)

const (
	RequestFile = "research_request.md"
	ReportFile  = "final_report.md"

	filePreviewRunes = 150
)

// FileStatus is the state of one expected output file.
type FileStatus struct {
	Name    string
	Path    string
	Exists  bool
	Size    int64
	Preview string
}

// DirEntry is one entry of the output directory.
type DirEntry struct {
	Name  string
	Size  int64
	IsDir bool
}

// OutputReport describes the output directory after a run.
type OutputReport struct {
	Dir       string
	DirExists bool
	Files     []FileStatus
	Entries   []DirEntry
}

// Missing returns the names of expected files that were not written.
func (r OutputReport) Missing() []string {
	var ret []string
	for _, f := range r.Files {
		if !f.Exists {
			ret = append(ret, f.Name)
		}
	}
	return ret
}

// CleanOutputs creates dir if needed and removes every .md file directly
// inside it.
func CleanOutputs(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, WrapError(err, ErrOutput, "create output directory").WithContext("dir", dir)
	}

	matches, err := file.FindByExt(dir, ".md")
	if err != nil {
		return nil, WrapError(err, ErrOutput, "list output directory").WithContext("dir", dir)
	}

	removed := make([]string, 0, len(matches))
	for _, path := range matches {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, WrapError(err, ErrOutput, "remove old output").WithContext("file", path)
		}
		name := filepath.Base(path)
		removed = append(removed, name)
		log.Info("Cleaned up: %s", name)
	}
	return removed, nil
}

// InspectOutputs checks dir for the expected files and lists its entries.
// A missing directory is reported, not returned as an error.
func InspectOutputs(dir string, expected ...string) (OutputReport, error) {
	report := OutputReport{Dir: dir}

	for _, name := range expected {
		status := FileStatus{Name: name, Path: filepath.Join(dir, name)}
		data, err := os.ReadFile(status.Path)
		switch {
		case err == nil:
			status.Exists = true
			status.Size = int64(len(data))
			status.Preview = preview(string(data), filePreviewRunes)
		case errors.Is(err, fs.ErrNotExist):
		default:
			return report, WrapError(err, ErrOutput, "read output file").WithContext("file", status.Path)
		}
		report.Files = append(report.Files, status)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, nil
		}
		return report, WrapError(err, ErrOutput, "list output directory").WithContext("dir", dir)
	}
	report.DirExists = true
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			continue
		}
		report.Entries = append(report.Entries, DirEntry{Name: entry.Name(), Size: info.Size(), IsDir: entry.IsDir()})
	}
	sort.Slice(report.Entries, func(i, j int) bool { return report.Entries[i].Name < report.Entries[j].Name })
	return report, nil
}

// PrintOutputs writes the file check, the directory listing and, when an
// expected file is missing, a diagnosis block.
func PrintOutputs(w io.Writer, report OutputReport, summary Summary) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", ruleWidth))
	fmt.Fprintln(w, "Checking for generated files:")

	for _, f := range report.Files {
		if f.Exists {
			fmt.Fprintf(w, "[OK] Generated %s at: %s\n", f.Name, f.Path)
			fmt.Fprintf(w, "   Content preview: %s\n", f.Preview)
			continue
		}
		fmt.Fprintf(w, "[MISSING] %s NOT generated\n", f.Name)
		fmt.Fprintf(w, "   Expected at: %s\n", f.Path)
	}

	fmt.Fprintf(w, "\nAll files in output directory (%s):\n", report.Dir)
	switch {
	case !report.DirExists:
		fmt.Fprintln(w, "   Directory does not exist!")
	case len(report.Entries) == 0:
		fmt.Fprintln(w, "   Directory is empty!")
	default:
		for _, e := range report.Entries {
			fmt.Fprintf(w, "   - %s (%d bytes)\n", e.Name, e.Size)
		}
	}

	if len(report.Missing()) > 0 {
		fmt.Fprintln(w, "\nDIAGNOSIS:")
		fmt.Fprintln(w, "   Files were not generated. Possible reasons:")
		fmt.Fprintln(w, "   1. Agent did not call write_file tool")
		fmt.Fprintln(w, "   2. Tool call failed silently")
		fmt.Fprintln(w, "   3. Backend configuration issue")
		fmt.Fprintf(w, "   4. write_file calls detected: %d\n", len(summary.WriteFileCalls))
	}
}
