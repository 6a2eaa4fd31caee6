// Package prompts renders the research agent's system prompts.
package prompts

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
)

// DateLayout is how the current date is shown to the researcher.
const DateLayout = "2006-01-02"

var (
	delegationTemplate = template.Must(template.New("delegation").Option("missingkey=error").Parse(SubagentDelegationInstructions))
	researcherTemplate = template.Must(template.New("researcher").Option("missingkey=error").Parse(ResearcherInstructions))
)

// Params fills the prompt placeholders.
type Params struct {
	Date                       string
	MaxConcurrentResearchUnits int
	MaxResearcherIterations    int
	// Language is the language of the request; Und adds no instruction
	Language language.Tag
}

// NewParams returns Params dated now.
func NewParams(now time.Time, maxConcurrentResearchUnits, maxResearcherIterations int, lang language.Tag) Params {
	return Params{
		Date:                       now.Format(DateLayout),
		MaxConcurrentResearchUnits: maxConcurrentResearchUnits,
		MaxResearcherIterations:    maxResearcherIterations,
		Language:                   lang,
	}
}

// FullResearchInstructions assembles the orchestrator prompt: workflow,
// file-writing requirements, delegation limits and, when known, the report
// language.
func FullResearchInstructions(p Params) (string, error) {
	delegation, err := render(delegationTemplate, p)
	if err != nil {
		return "", err
	}

	sections := []string{
		ResearchWorkflowInstructions,
		FileWritingRequirements,
		delegation,
	}
	if instruction := LanguageInstruction(p.Language); instruction != "" {
		sections = append(sections, instruction)
	}
	return strings.Join(trimAll(sections), "\n\n"), nil
}

// Researcher renders the research sub-agent prompt.
func Researcher(p Params) (string, error) {
	return render(researcherTemplate, p)
}

func render(t *template.Template, p Params) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, p); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", t.Name(), err)
	}
	return b.String(), nil
}

func trimAll(sections []string) []string {
	ret := make([]string, 0, len(sections))
	for _, s := range sections {
		ret = append(ret, strings.TrimSpace(s))
	}
	return ret
}
