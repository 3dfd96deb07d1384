package critique

import "strings"

// MaxLearningResources caps every recommended resource list.
const MaxLearningResources = 4

// keywordResource is appended when any of its keywords occurs in the feedback.
type keywordResource struct {
	keywords []string
	resource LearningResource
}

// Catalog holds the static learning-resource tables. It is constructed once
// at startup and injected; nothing mutates it afterwards.
type Catalog struct {
	seeds   map[Category][]LearningResource
	boosts  []keywordResource
	minSeed int
}

// NewCatalog builds the default resource catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		minSeed: 3,
		seeds: map[Category][]LearningResource{
			CategoryGeneral: {
				{
					Kind:        KindBook,
					Title:       "Drawing on the Right Side of the Brain",
					Description: "Betty Edwards' classic course on seeing edges, spaces, relationships, light and gestalt.",
					Difficulty:  Beginner,
				},
				{
					Kind:        KindVideo,
					Title:       "Proko: Art Fundamentals",
					Description: "Free video lessons on gesture, form, shading and construction.",
					URL:         "https://www.proko.com/",
					Difficulty:  Beginner,
				},
			},
			CategoryTechnique: {
				{
					Kind:        KindTutorial,
					Title:       "Ctrl+Paint: Digital and Traditional Painting Fundamentals",
					Description: "Short, focused lessons on brush control, edges, values and rendering.",
					URL:         "https://www.ctrlpaint.com/",
					Difficulty:  Intermediate,
				},
			},
			CategoryComposition: {
				{
					Kind:        KindBook,
					Title:       "Framed Ink: Drawing and Composition for Visual Storytellers",
					Description: "Marcos Mateu-Mestre on framing, focal points, leading lines and value grouping.",
					Difficulty:  Intermediate,
				},
			},
			CategoryColor: {
				{
					Kind:        KindBook,
					Title:       "Color and Light: A Guide for the Realist Painter",
					Description: "James Gurney on color temperature, harmony, gamut mapping and atmospheric effects.",
					Difficulty:  Intermediate,
				},
			},
		},
		boosts: []keywordResource{
			{
				keywords: []string{"shading", "shadow", "light"},
				resource: LearningResource{
					Kind:        KindVideo,
					Title:       "Light and Shadow Fundamentals",
					Description: "How form shadows, cast shadows, core shadows and reflected light describe volume.",
					Difficulty:  Beginner,
				},
			},
			{
				keywords: []string{"perspective", "depth", "dimension"},
				resource: LearningResource{
					Kind:        KindTutorial,
					Title:       "Perspective Made Easy",
					Description: "One-, two- and three-point perspective with horizon lines and vanishing points.",
					Difficulty:  Beginner,
				},
			},
			{
				keywords: []string{"proportion", "anatomy", "figure"},
				resource: LearningResource{
					Kind:        KindBook,
					Title:       "Figure Drawing: Design and Invention",
					Description: "Michael Hampton's approach to gesture, structure and anatomy of the human figure.",
					Difficulty:  Advanced,
				},
			},
		},
	}
}

// Seeds returns a copy of the static seed list for a category.
func (c *Catalog) Seeds(category Category) []LearningResource {
	src := c.seeds[category]
	out := make([]LearningResource, len(src))
	copy(out, src)
	return out
}

// Recommend maps a category and the feedback text to at most
// MaxLearningResources resources. Same input, same output.
func (c *Catalog) Recommend(category Category, feedback string) []LearningResource {
	out := c.Seeds(category)
	if len(out) < c.minSeed && category != CategoryGeneral {
		out = append(out, c.seeds[CategoryGeneral]...)
	}

	lower := strings.ToLower(feedback)
	for _, b := range c.boosts {
		if containsAny(lower, b.keywords) {
			out = append(out, b.resource)
		}
	}

	out = dedupeResources(out)
	if len(out) > MaxLearningResources {
		out = out[:MaxLearningResources]
	}
	return out
}

// ExtractLearningResources is the extraction-engine view of Recommend.
func (c *Catalog) ExtractLearningResources(feedback string, category Category) []LearningResource {
	return c.Recommend(category, feedback)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func dedupeResources(in []LearningResource) []LearningResource {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, r := range in {
		if seen[r.Title] {
			continue
		}
		seen[r.Title] = true
		out = append(out, r)
	}
	return out
}
