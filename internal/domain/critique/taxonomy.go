package critique

import (
	"regexp"
	"strings"
)

// FallbackStyle is returned whenever nothing in the taxonomy matches.
const FallbackStyle = "mixed media"

// StyleFamily groups canonical style labels.
type StyleFamily struct {
	Name   string   `json:"name"`
	Styles []string `json:"styles"`
}

// Taxonomy is the fixed, ordered set of canonical styles. It is built once and
// only read afterwards, so it is safe to share between requests.
type Taxonomy struct {
	families []StyleFamily
	entries  []string
	exact    map[string]struct{}
	rules    []narrativeRule
	keywords []string
}

func defaultFamilies() []StyleFamily {
	return []StyleFamily{
		{Name: "traditional media", Styles: []string{
			"oil painting", "watercolor", "acrylic", "gouache", "pastel",
			"charcoal", "graphite", "pencil drawing", "ink drawing", "printmaking",
		}},
		{Name: "digital media", Styles: []string{
			"digital painting", "digital illustration", "concept art", "pixel art",
			"vector art", "3d render", "photo manipulation",
		}},
		{Name: "art movements", Styles: []string{
			"impressionism", "expressionism", "surrealism", "cubism", "photorealism",
			"realism", "abstract", "pop art", "minimalism", "art nouveau",
			"baroque", "renaissance", "romanticism",
		}},
		{Name: "technique and subject", Styles: []string{
			"portrait", "landscape", "still life", "figure drawing", "sketch",
			"anime", "manga", "comic", "cartoon", "illustration", "calligraphy",
			"street art",
		}},
		{Name: "catch-all", Styles: []string{FallbackStyle}},
	}
}

// NewTaxonomy builds the process-wide taxonomy.
func NewTaxonomy() *Taxonomy {
	t := &Taxonomy{
		families: defaultFamilies(),
		exact:    make(map[string]struct{}),
		rules:    narrativeRules(),
		keywords: []string{
			"digital", "traditional", "painting", "drawing", "sketch",
			"art", "illustration", "concept", "realistic", "abstract",
		},
	}
	for _, f := range t.families {
		for _, s := range f.Styles {
			t.entries = append(t.entries, s)
			t.exact[s] = struct{}{}
		}
	}
	return t
}

// Entries returns a copy of the canonical styles in enumeration order.
func (t *Taxonomy) Entries() []string {
	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// Families returns a copy of the grouped taxonomy.
func (t *Taxonomy) Families() []StyleFamily {
	out := make([]StyleFamily, 0, len(t.families))
	for _, f := range t.families {
		styles := make([]string, len(f.Styles))
		copy(styles, f.Styles)
		out = append(out, StyleFamily{Name: f.Name, Styles: styles})
	}
	return out
}

// Contains reports whether s is a canonical style or the fallback.
func (t *Taxonomy) Contains(s string) bool {
	_, ok := t.exact[s]
	return ok
}

// Classify normalizes a free-text style description: exact match, then
// substring match, then token match, then FallbackStyle.
func (t *Taxonomy) Classify(candidate string) string {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return FallbackStyle
	}
	if _, ok := t.exact[c]; ok {
		return c
	}
	for _, s := range t.entries {
		if strings.Contains(c, s) {
			return s
		}
	}
	for _, tok := range strings.Fields(c) {
		tok = strings.Trim(tok, `.,;:!?"'()[]`)
		for _, s := range t.entries {
			if tok == s {
				return s
			}
		}
	}
	return FallbackStyle
}

// narrativeRule pairs a pattern with the handler that picks the text to classify.
type narrativeRule struct {
	name string
	re   *regexp.Regexp
	pick func(m []string) string
}

func firstGroup(m []string) string { return m[1] }

const (
	phrase     = `[a-z][a-z0-9-]*(?:\s+[a-z][a-z0-9-]*){0,2}`
	phraseLazy = `[a-z][a-z0-9-]*(?:\s+[a-z][a-z0-9-]*){0,2}?`
)

func narrativeRules() []narrativeRule {
	return []narrativeRule{
		{
			name: "style is",
			re:   regexp.MustCompile(`(?i)\bstyle\s+(?:is|appears\s+to\s+be|seems\s+to\s+be|resembles)\s+(?:an?\s+|the\s+)?(` + phrase + `)`),
			pick: firstGroup,
		},
		{
			name: "this is a piece",
			re:   regexp.MustCompile(`(?i)\bthis\s+is\s+an?\s+((?:[a-z][a-z0-9-]*\s+){0,2}(?:piece|work|artwork|painting|drawing|illustration|sketch|render|portrait|landscape))\b`),
			pick: firstGroup,
		},
		{
			name: "follows the style",
			re:   regexp.MustCompile(`(?i)\bfollows\s+(?:the\s+|an?\s+)?(` + phraseLazy + `)\s+(?:style|tradition|approach|school)\b`),
			pick: firstGroup,
		},
		{
			name: "technique typical of",
			re:   regexp.MustCompile(`(?i)\btechniques?\s+typical\s+of\s+(?:an?\s+|the\s+)?(` + phrase + `)`),
			pick: firstGroup,
		},
		{
			name: "in the style",
			re:   regexp.MustCompile(`(?i)\b(?:in|with)\s+(?:the\s+|an?\s+)?(` + phraseLazy + `)\s+style\b`),
			pick: firstGroup,
		},
		{
			name: "reminiscent of",
			re:   regexp.MustCompile(`(?i)\breminiscent\s+of\s+(?:an?\s+|the\s+)?(` + phrase + `)`),
			pick: firstGroup,
		},
	}
}

// FromNarrative detects the style described in free text. The first rule that
// matches anywhere wins; otherwise the first keyword present is classified.
func (t *Taxonomy) FromNarrative(text string) string {
	for _, r := range t.rules {
		if m := r.re.FindStringSubmatch(text); m != nil {
			return t.Classify(r.pick(m))
		}
	}
	lower := strings.ToLower(text)
	for _, kw := range t.keywords {
		if strings.Contains(lower, kw) {
			return t.Classify(kw)
		}
	}
	return FallbackStyle
}
