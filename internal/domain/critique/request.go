package critique

import (
	"regexp"
	"strings"
)

// DefaultLanguage is used when the caller sends none.
const DefaultLanguage = "en"

var languageCode = regexp.MustCompile(`^[a-z]{2}$`)

// Validate checks the request before any external call is made.
func (r AnalysisRequest) Validate() error {
	if r.Image.Empty() && strings.TrimSpace(r.Prompt) == "" {
		return Invalid("image", "an image, an image URL or a prompt is required")
	}
	if !r.Category.Valid() {
		return Invalid("category", "%q is not one of general, technique, composition, color, style", r.Category)
	}
	if r.Language != "" && !languageCode.MatchString(r.Language) {
		return Invalid("language", "%q is not an ISO-639-1 code", r.Language)
	}
	return nil
}

// Anonymous reports whether the request carries no caller identity.
func (r AnalysisRequest) Anonymous() bool {
	return strings.TrimSpace(r.UserID) == ""
}
