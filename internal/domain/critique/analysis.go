package critique

// Analyzer turns raw provider text into a StructuredAnalysis using the
// shared taxonomy and catalog.
type Analyzer struct {
	Taxonomy *Taxonomy
	Catalog  *Catalog
}

// NewAnalyzer wires the default taxonomy and catalog.
func NewAnalyzer() *Analyzer {
	return &Analyzer{Taxonomy: NewTaxonomy(), Catalog: NewCatalog()}
}

// Build assembles the structured result. It is total: any text, including
// the empty string, produces a complete value.
func (a *Analyzer) Build(raw RawFeedback, category Category, language string) *StructuredAnalysis {
	sec := ParseSections(raw.FullText)


	return &StructuredAnalysis{
		FullText:                 raw.FullText,
		DetectedStyle:            a.detectStyle(sec.Style, raw.FullText),
		TechnicalAssessment:      sec.Technical,
		CompositionAssessment:    sec.Composition,
		ColorAssessment:          sec.Color,
		StyleContext:             sec.Style,
		Improvements:             SplitImprovements(sec.Improvements),
		LearningResourcesSection: sec.Resources,
		Suggestions:              ExtractSuggestions(raw.FullText),
		LearningResources:        a.Catalog.ExtractLearningResources(raw.FullText, category),
		Category:                 category,
		Language:                 language,
		Model:                    raw.Model,
	}
}

// detectStyle reads the Style & Context body (the whole text when it is
// empty). A body that names a canonical style outside any narrative phrase
// is classified directly.
func (a *Analyzer) detectStyle(section, full string) string {
	if section == "" {
		return a.Taxonomy.FromNarrative(full)
	}
	if s := a.Taxonomy.FromNarrative(section); s != FallbackStyle {
		return s
	}
	return a.Taxonomy.Classify(section)
}
