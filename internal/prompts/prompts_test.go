package prompts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestFullResearchInstructions(t *testing.T) {
	p := NewParams(time.Date(2025, 3, 4, 10, 0, 0, 0, time.UTC), 3, 2, language.Und)

	got, err := FullResearchInstructions(p)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "# Research Workflow"))
	assert.Contains(t, got, `write_file("/research_request.md", content)`)
	assert.Contains(t, got, `write_file("/final_report.md", content)`)
	assert.Contains(t, got, "### Sources")
	assert.Contains(t, got, "Use at most 3 parallel sub-agents per iteration")
	assert.Contains(t, got, "Stop after 2 delegation rounds")
	assert.NotContains(t, got, "{{")
	assert.NotContains(t, got, "Output Language")

	// section order: workflow, file requirements, delegation
	workflow := strings.Index(got, "# Research Workflow")
	files := strings.Index(got, "## File Writing Requirements")
	delegation := strings.Index(got, "# Sub-Agent Research Coordination")
	assert.Less(t, workflow, files)
	assert.Less(t, files, delegation)
}

func TestFullResearchInstructions_WithLanguage(t *testing.T) {
	p := NewParams(time.Now(), 3, 3, language.Chinese)

	got, err := FullResearchInstructions(p)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "Write /research_request.md and /final_report.md in Chinese."))
}

func TestResearcher(t *testing.T) {
	got, err := Researcher(NewParams(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC), 3, 3, language.Und))
	require.NoError(t, err)

	assert.Contains(t, got, "today's date is 2025-03-04.")
	assert.Contains(t, got, "tavily_search")
	assert.Contains(t, got, "think_tool")
	assert.NotContains(t, got, "{{")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, language.Und, DetectLanguage("   "))

	zh := DetectLanguage("研究构建人工智能代理时使用的上下文工程方法")
	base, _ := zh.Base()
	assert.Equal(t, "zh", base.String())

	ja := DetectLanguage("これはエージェントのためのコンテキストエンジニアリングについての調査です")
	base, _ = ja.Base()
	assert.Equal(t, "ja", base.String())

	en := DetectLanguage("Research the context engineering approaches that are used to build modern AI agents and compare them with each other")
	base, _ = en.Base()
	assert.Equal(t, "en", base.String())
}

func TestDetectLanguage_ShortTopicsAreUndetermined(t *testing.T) {
	topics := []string{
		"research LLM agents",
		"Go generics",
		"RAG vs fine-tuning",
		"kubernetes operators",
	}

	for _, topic := range topics {
		t.Run(topic, func(t *testing.T) {
			tag := DetectLanguage(topic)
			assert.Equal(t, language.Und, tag)
			assert.Empty(t, LanguageInstruction(tag))
		})
	}
}

func TestDetectLanguage_DefaultTopic(t *testing.T) {
	base, _ := DetectLanguage("research context engineering approaches used to build AI agents").Base()
	assert.Equal(t, "en", base.String())
}

func TestLanguageInstruction(t *testing.T) {
	assert.Empty(t, LanguageInstruction(language.Und))
	assert.Contains(t, LanguageInstruction(language.English), "in English")
	assert.Contains(t, LanguageInstruction(language.Japanese), "in Japanese")
}
