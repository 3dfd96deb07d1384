package critique

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxSuggestions caps ExtractSuggestions.
const MaxSuggestions = 5

var (
	// indicator tiers, tried in order until one yields something
	suggestionTiers = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:suggest|recommend|try|consider|improve|practice)`),
		regexp.MustCompile(`(?i)\b(?:improvement|better|enhance)`),
	}

	bulletMarker  = regexp.MustCompile(`^(?:[-*•+]|\d+[.)])\s+`)
	boldHeading   = regexp.MustCompile(`^\*\*[^*]+\*\*:?$`)
	sentenceBreak = regexp.MustCompile(`[.!?]\s+`)
	// a period after one of these does not end a sentence
	abbreviations = map[string]bool{
		"e.g.": true, "i.e.": true, "vs.": true, "cf.": true, "approx.": true,
		"incl.": true, "esp.": true, "etc.": true, "fig.": true, "no.": true,
	}
	leadIn        = regexp.MustCompile(`(?i)^(?:(?:i|we)(?:\s+would|'d|\s+strongly)?\s+(?:suggest|recommend)(?:\s+that)?|consider)\s+`)
)

// ExtractSuggestions pulls at most MaxSuggestions actionable sentences out of
// free text. It never fails: unstructured input just yields fewer entries.
func ExtractSuggestions(feedback string) []string {
	segments := suggestionSegments(feedback)
	for _, re := range suggestionTiers {
		var out []string
		for _, seg := range segments {
			if !re.MatchString(seg) {
				continue
			}
			if s := strings.TrimSpace(leadIn.ReplaceAllString(seg, "")); s != "" {
				out = append(out, s)
			}
			if len(out) == MaxSuggestions {
				break
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return []string{}
}

// suggestionSegments splits text into candidate sentences, skipping blank
// lines and headings and stripping one bullet marker per line.
func suggestionSegments(text string) []string {
	var segs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || isHeading(line) {
			continue
		}
		line = bulletMarker.ReplaceAllString(line, "")
		for _, s := range splitSentences(line) {
			if s = strings.TrimSpace(s); s != "" {
				segs = append(segs, s)
			}
		}
	}
	return segs
}

func isHeading(line string) bool {
	return strings.HasPrefix(line, "#") || boldHeading.MatchString(line)
}

// splitSentences breaks after . ! or ? followed by whitespace, except after a
// known abbreviation or when the next word starts lowercase.
func splitSentences(line string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceBreak.FindAllStringIndex(line, -1) {
		if !sentenceEnds(line, start, loc) {
			continue
		}
		// keep the punctuation with its sentence
		out = append(out, line[start:loc[0]+1])
		start = loc[1]
	}
	return append(out, line[start:])
}

func sentenceEnds(line string, start int, loc []int) bool {
	if next, _ := utf8.DecodeRuneInString(line[loc[1]:]); unicode.IsLower(next) {
		return false
	}
	if line[loc[0]] != '.' {
		return true
	}
	head := line[start : loc[0]+1]
	word := head[strings.LastIndexAny(head, " \t(")+1:]
	return !abbreviations[strings.ToLower(word)]
}
