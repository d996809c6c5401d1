package analytics

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// minLanguageConfidence is the lowest confidence accepted as a detection.
const minLanguageConfidence = 0.5

var detectableLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Italian,
	lingua.Dutch,
	lingua.Hindi,
}

// LanguageDetector guesses the dominant language of page text.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(detectableLanguages...).
			WithMinimumRelativeDistance(0.1).
			Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code of the language of text, or
// an empty string when no language can be told apart with confidence.
func (d *LanguageDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	if d.detector.ComputeLanguageConfidence(text, language) < minLanguageConfidence {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
