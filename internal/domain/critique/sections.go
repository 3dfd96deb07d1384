package critique

import (
	"regexp"
	"sort"
	"strings"
)

// Sections are the labelled blocks of a feedback text. A section that is not
// present is the empty string.
type Sections struct {
	Technical    string `json:"technical_assessment"`
	Composition  string `json:"compositional_analysis"`
	Color        string `json:"color_theory"`
	Style        string `json:"style_context"`
	Improvements string `json:"specific_improvements"`
	Resources    string `json:"learning_resources"`
}

type sectionHeader struct {
	re  *regexp.Regexp
	set func(s *Sections, body string)
}

// header matches either a bold heading (optionally numbered or after #'s),
// whose body may continue on the same line, or a plain markdown # heading.
func header(name string) *regexp.Regexp {
	bold := `(?:\d+[.)][ \t]*)?(?:#{1,6}[ \t]*)?\*\*[ \t]*(?:\d+[.)][ \t]*)?` + name + `[^*\n]*\*\*[ \t]*:?`
	hash := `#{1,6}[ \t]*(?:\d+[.)][ \t]*)?` + name + `[^\n:]*:?`
	return regexp.MustCompile(`(?im)^[ \t]*(?:` + bold + `|` + hash + `)`)
}

var (
	sectionHeaders = []sectionHeader{
		{header(`technical\s+assessment`), func(s *Sections, b string) { s.Technical = b }},
		{header(`composition(?:al)?\s+analysis`), func(s *Sections, b string) { s.Composition = b }},
		{header(`colou?r\s+theory`), func(s *Sections, b string) { s.Color = b }},
		{header(`style\s*(?:&|and)\s*context`), func(s *Sections, b string) { s.Style = b }},
		{header(`specific\s+improvements`), func(s *Sections, b string) { s.Improvements = b }},
		{header(`learning\s+resources`), func(s *Sections, b string) { s.Resources = b }},
	}

	// any other heading also ends a section body
	standaloneHeading = regexp.MustCompile(`(?m)^[ \t]*(?:\d+[.)][ \t]*)?(?:#{1,6}[ \t]*)?\*\*[^*\n]+\*\*[ \t]*:?[ \t]*$|^[ \t]*#{1,6}[ \t]+\S`)

	numberedItem = regexp.MustCompile(`\d+\.`)
)

// ParseSections splits feedback into its six labelled sections. A body runs
// from the end of its header to the next heading of any kind, so a section
// never swallows the one after it.
func ParseSections(text string) Sections {
	var bounds []int
	for _, h := range sectionHeaders {
		for _, loc := range h.re.FindAllStringIndex(text, -1) {
			bounds = append(bounds, loc[0])
		}
	}
	for _, loc := range standaloneHeading.FindAllStringIndex(text, -1) {
		bounds = append(bounds, loc[0])
	}
	sort.Ints(bounds)

	var out Sections
	for _, h := range sectionHeaders {
		loc := h.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		end := len(text)
		for _, b := range bounds {
			if b >= loc[1] {
				end = b
				break
			}
		}
		h.set(&out, strings.TrimSpace(text[loc[1]:end]))
	}
	return out
}

// SplitImprovements turns a numbered list into its items, dropping empty fragments.
func SplitImprovements(section string) []string {
	out := []string{}
	for _, part := range numberedItem.Split(section, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
