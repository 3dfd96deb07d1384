package prompt

import (
	"fmt"
	"strings"

	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
)

var categoryTemplates = map[critique.Category]string{
	critique.CategoryGeneral: "Give a complete critique of this artwork covering technique, composition, color and style.",
	critique.CategoryTechnique: "Focus on technique: line quality, mark making, rendering, edges, values and handling of the medium. " +
		"Still fill every section, but go deepest in Technical Assessment.",
	critique.CategoryComposition: "Focus on composition: focal point, balance, eye movement, framing, negative space and perspective. " +
		"Still fill every section, but go deepest in Compositional Analysis.",
	critique.CategoryColor: "Focus on color: palette, harmony, temperature, saturation, value structure and lighting. " +
		"Still fill every section, but go deepest in Color Theory.",
	critique.CategoryStyle: "Focus on style: identify the medium, movement or tradition, compare with known artists and suggest how to develop a personal voice. " +
		"Still fill every section, but go deepest in Style & Context.",
}

var languageNames = map[string]string{
	"en": "English",
	"id": "Indonesian",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"pt": "Portuguese",
	"it": "Italian",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"ru": "Russian",
}

// GetUserPrompt builds the per-request instruction from the category
// template, the caller's free text and the response language.
func GetUserPrompt(category critique.Category, freeText, language string) string {
	tpl, ok := categoryTemplates[category]
	if !ok {
		tpl = categoryTemplates[critique.CategoryGeneral]
	}

	var b strings.Builder
	b.WriteString(tpl)
	if s := strings.TrimSpace(freeText); s != "" {
		fmt.Fprintf(&b, "\n\nThe artist adds: %s", s)
	}
	if language != "" && language != critique.DefaultLanguage {
		name, ok := languageNames[language]
		if !ok {
			name = "the language with ISO code " + language
		}
		fmt.Fprintf(&b, "\n\nWrite the whole answer in %s, but keep the six section headers in English.", name)
	}
	return b.String()
}
