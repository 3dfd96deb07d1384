package critique

import "strings"

// Category selects the focus of the feedback. It picks both the prompt
// template and the seed resources.
type Category string

const (
	CategoryGeneral     Category = "general"
	CategoryTechnique   Category = "technique"
	CategoryComposition Category = "composition"
	CategoryColor       Category = "color"
	CategoryStyle       Category = "style"
)

// Categories in display order.
var Categories = []Category{
	CategoryGeneral,
	CategoryTechnique,
	CategoryComposition,
	CategoryColor,
	CategoryStyle,
}

// ParseCategory maps user input to a Category. Empty input means general.
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryGeneral, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// ResourceKind enum
type ResourceKind string

const (
	KindVideo      ResourceKind = "video"
	KindBook       ResourceKind = "book"
	KindTutorial   ResourceKind = "tutorial"
	KindExhibition ResourceKind = "exhibition"
	KindOther      ResourceKind = "other"
)

// Difficulty enum
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

// LearningResource value object
type LearningResource struct {
	Kind        ResourceKind `json:"kind"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url,omitempty"`
	Difficulty  Difficulty   `json:"difficulty_level"`
}

// ImageInput is what the vision collaborator receives: inline bytes, a
// reference URL, or both.
type ImageInput struct {
	Data     []byte `json:"-"`
	MIMEType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Empty reports whether neither bytes nor URL are present.
func (i ImageInput) Empty() bool {
	return len(i.Data) == 0 && strings.TrimSpace(i.URL) == ""
}

// AnalysisRequest is built once per incoming request and never mutated.
type AnalysisRequest struct {
	Image    ImageInput
	Category Category
	Prompt   string
	Language string
	UserID   string
	Title    string
	// ImageHash identifies the preprocessed image bytes (or URL) for caching.
	ImageHash string
}

// RawFeedback is the untouched provider answer.
type RawFeedback struct {
	FullText   string `json:"full_text"`
	Model      string `json:"model"`
	TokenUsage *int   `json:"token_usage,omitempty"`
}

// StructuredAnalysis is the parsed, typed result of one feedback request.
type StructuredAnalysis struct {
	FullText                 string             `json:"full_text"`
	DetectedStyle            string             `json:"detected_style"`
	TechnicalAssessment      string             `json:"technical_assessment"`
	CompositionAssessment    string             `json:"composition_assessment"`
	ColorAssessment          string             `json:"color_assessment"`
	StyleContext             string             `json:"style_context"`
	Improvements             []string           `json:"improvements"`
	LearningResourcesSection string             `json:"learning_resources_text"`
	Suggestions              []string           `json:"suggestions"`
	LearningResources        []LearningResource `json:"learning_resources"`
	Category                 Category           `json:"category"`
	Language                 string             `json:"language"`
	Model                    string             `json:"model,omitempty"`
}

// ArtworkMetadata describes the artwork a saved analysis belongs to.
type ArtworkMetadata struct {
	UserID   string   `json:"user_id"`
	Title    string   `json:"title"`
	ImageURL string   `json:"image_url,omitempty"`
	Category Category `json:"category"`
	Model    string   `json:"model,omitempty"`
}

// SaveReceipt holds the ids assigned by the persistence collaborator.
type SaveReceipt struct {
	ArtworkID  string `json:"artwork_id"`
	AnalysisID string `json:"analysis_id"`
}
