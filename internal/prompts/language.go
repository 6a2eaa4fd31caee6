package prompts

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DetectLanguage guesses the language of a research request.
// It returns language.Und when the text gives no usable signal, which
// includes short Latin-script topics whatlanggo cannot call reliably.
func DetectLanguage(text string) language.Tag {
	if strings.TrimSpace(text) == "" {
		return language.Und
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return language.Und
	}
	iso := info.Lang.Iso6391()
	if iso == "" {
		return language.Und
	}
	tag, err := language.Parse(iso)
	if err != nil {
		return language.Und
	}
	return tag
}

// LanguageInstruction tells the agent which language to write its files in.
func LanguageInstruction(tag language.Tag) string {
	if tag == language.Und {
		return ""
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		name = tag.String()
	}
	return fmt.Sprintf("## Output Language\n\nThe research request is written in %s. Write /research_request.md and /final_report.md in %s.", name, name)
}
