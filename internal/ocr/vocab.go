package ocr

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// KnownLabels is the vocabulary of common floor-plan room names that OCR
// output is corrected against.
var KnownLabels = []string{
	"Living Room", "Bedroom", "Bedroom 1", "Bedroom 2", "Bedroom 3", "Bedroom 4",
	"Bathroom", "Bathroom 1", "Bathroom 2", "Kitchen", "Dining Room", "Hallway",
	"Closet", "Walk-in Closet", "Entry", "Porch", "Front Porch", "Balcony", "Garage",
	"Storage", "Utilities", "Sitting Room", "Office", "Study", "Pantry", "Laundry",
	"Stairs", "Lobby", "Corridor", "Master Bedroom", "Guest Room", "Playroom",
}

// DefaultFuzzyThreshold is the similarity score (0-100) at or above which a
// recognized word is replaced by its best vocabulary match.
const DefaultFuzzyThreshold = 75.0

// CorrectLabel fuzzy-matches recognized text against KnownLabels.
//
// It returns the best-matching vocabulary entry and its similarity score in
// [0, 100]. If the score is below the threshold the original text is
// returned unchanged; the score is reported either way so callers can carry
// it as the detection's fuzzy score. Empty input scores 0.
func CorrectLabel(text string, threshold float64) (string, float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return text, 0
	}

	best := ""
	bestScore := 0.0
	for _, label := range KnownLabels {
		if score := similarity(text, label); score > bestScore {
			best = label
			bestScore = score
		}
	}

	if bestScore >= threshold {
		return best, bestScore
	}
	return text, bestScore
}

// similarity scores two strings in [0, 100] from their normalized edit
// distance, case-insensitively. 100 means equal.
func similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 100
	}

	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 100
	}

	dist := levenshtein.ComputeDistance(a, b)
	return 100 * (1 - float64(dist)/float64(longest))
}
