package research

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/MimeLyc/deep-research-agent/internal/llm"
	"github.com/MimeLyc/deep-research-agent/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestCleanOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "final_report.md"), "old")
	writeFile(t, filepath.Join(dir, "NOTES.MD"), "old")
	writeFile(t, filepath.Join(dir, "data.json"), "{}")
	writeFile(t, filepath.Join(dir, "nested", "keep.md"), "nested")

	removed, err := CleanOutputs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"final_report.md"}, removed)

	left, err := file.FindByExt(dir, ".md")
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.FileExists(t, filepath.Join(dir, "data.json"))
	assert.FileExists(t, filepath.Join(dir, "NOTES.MD"))
	assert.FileExists(t, filepath.Join(dir, "nested", "keep.md"))
}

func TestCleanOutputs_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "research_outputs")

	removed, err := CleanOutputs(dir)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.DirExists(t, dir)
}

func TestInspectOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, RequestFile), "research context engineering")

	report, err := InspectOutputs(dir, RequestFile, ReportFile)
	require.NoError(t, err)
	require.Len(t, report.Files, 2)

	assert.True(t, report.Files[0].Exists)
	assert.Equal(t, "research context engineering", report.Files[0].Preview)
	assert.Equal(t, int64(len("research context engineering")), report.Files[0].Size)
	assert.False(t, report.Files[1].Exists)
	assert.Equal(t, []string{ReportFile}, report.Missing())

	assert.True(t, report.DirExists)
	require.Len(t, report.Entries, 1)
	assert.Equal(t, RequestFile, report.Entries[0].Name)
}

func TestInspectOutputs_MissingDirectory(t *testing.T) {
	report, err := InspectOutputs(filepath.Join(t.TempDir(), "nope"), RequestFile)
	require.NoError(t, err)
	assert.False(t, report.DirExists)
	assert.Equal(t, []string{RequestFile}, report.Missing())
}

func TestPrintOutputs_Diagnosis(t *testing.T) {
	dir := t.TempDir()
	report, err := InspectOutputs(dir, RequestFile, ReportFile)
	require.NoError(t, err)

	summary := Summarize([]llm.Message{llm.AIMessage{ToolCalls: []llm.ToolCall{{Name: "write_file"}}}})

	var buf bytes.Buffer
	PrintOutputs(&buf, report, summary)
	out := buf.String()

	assert.Contains(t, out, "[MISSING] research_request.md NOT generated")
	assert.Contains(t, out, "[MISSING] final_report.md NOT generated")
	assert.Contains(t, out, "Directory is empty!")
	assert.Contains(t, out, "DIAGNOSIS:")
	assert.Contains(t, out, "4. write_file calls detected: 1")
}

func TestPrintOutputs_AllPresent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, RequestFile), "q")
	writeFile(t, filepath.Join(dir, ReportFile), "# Report")

	report, err := InspectOutputs(dir, RequestFile, ReportFile)
	require.NoError(t, err)

	var buf bytes.Buffer
	PrintOutputs(&buf, report, Summary{})
	out := buf.String()

	assert.Contains(t, out, "[OK] Generated final_report.md at: "+filepath.Join(dir, ReportFile))
	assert.Contains(t, out, "Content preview: # Report")
	assert.Contains(t, out, "- final_report.md (8 bytes)")
	assert.NotContains(t, out, "DIAGNOSIS")
}
