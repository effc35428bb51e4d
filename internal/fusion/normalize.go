package fusion

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PatternRule maps any label containing one of its keywords to a canonical
// class. Rules are evaluated in order and the first match wins, so the rule
// list is a priority order: later rules are never reached once an earlier
// one matches.
type PatternRule struct {
	Keywords  []string
	Canonical string
}

// DefaultRules returns the ordered keyword rules used to canonicalize room
// and furniture labels across detectors.
//
// The grouping of balconies/terraces/patios and foyers/entries/hallways
// under "bedroom" is inherited behavior kept for compatibility with existing
// consumers; it conflates semantically distinct rooms and is a known wart.
func DefaultRules() []PatternRule {
	return []PatternRule{
		{Keywords: []string{"bedroom", "bed room"}, Canonical: "bedroom"},
		{Keywords: []string{"bathroom", "bath room", "restroom", "washroom", "wc", "toilet", "lavatory"}, Canonical: "toilet"},
		{Keywords: []string{"kitchen", "kitchenette"}, Canonical: "kitchen"},
		{Keywords: []string{"living room", "livingroom", "lounge", "family room"}, Canonical: "living room"},
		{Keywords: []string{"dining room", "diningroom", "dining area", "dining table"}, Canonical: "dining room"},
		{Keywords: []string{"balcony", "terrace", "patio"}, Canonical: "bedroom"},
		{Keywords: []string{"foyer", "entry", "entrance", "hallway", "corridor"}, Canonical: "bedroom"},
		{Keywords: []string{"closet", "wardrobe", "storage"}, Canonical: "cabinet"},
		{Keywords: []string{"office", "study"}, Canonical: "room"},
		{Keywords: []string{"laundry", "utility"}, Canonical: "room"},
		{Keywords: []string{"couch", "sofa"}, Canonical: "sofa"},
		{Keywords: []string{"potted plant", "plant"}, Canonical: "room"},
	}
}

// DefaultSynonyms returns the exact-match fallback table applied when no
// keyword rule fires. Identity entries pin labels that are already canonical.
func DefaultSynonyms() map[string]string {
	return map[string]string{
		"wc":           "toilet",
		"fridge":       "refrigerator",
		"staircase":    "stairs",
		"countertop":   "counter",
		"door":         "door",
		"window":       "window",
		"wall":         "wall",
		"room":         "room",
		"table":        "table",
		"chair":        "chair",
		"bed":          "bed",
		"sofa":         "sofa",
		"sink":         "sink",
		"stairs":       "stairs",
		"counter":      "counter",
		"refrigerator": "refrigerator",
	}
}

// Normalizer maps free-text class labels to canonical categories so that
// labels emitted by different detectors become comparable.
type Normalizer struct {
	rules    []PatternRule
	synonyms map[string]string
	titler   cases.Caser
}

// NewNormalizer builds a Normalizer from an explicit rule list and synonym
// table. Both are treated as immutable after construction.
func NewNormalizer(rules []PatternRule, synonyms map[string]string) *Normalizer {
	return &Normalizer{
		rules:    rules,
		synonyms: synonyms,
		titler:   cases.Title(language.English),
	}
}

// DefaultNormalizer returns a Normalizer with the default rules and synonyms.
func DefaultNormalizer() *Normalizer {
	return NewNormalizer(DefaultRules(), DefaultSynonyms())
}

// Normalize returns the canonical class for a free-text label.
//
// The input is lower-cased and trimmed, then matched against the ordered
// keyword rules (substring containment, first match wins), then against the
// exact-match synonym table. If nothing matches, the lower-cased trimmed
// label is returned unchanged.
func (n *Normalizer) Normalize(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))

	for _, rule := range n.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(normalized, kw) {
				return rule.Canonical
			}
		}
	}

	if canonical, ok := n.synonyms[normalized]; ok {
		return canonical
	}

	return normalized
}

// SameClass reports whether two labels normalize to the same canonical class.
func (n *Normalizer) SameClass(a, b string) bool {
	return n.Normalize(a) == n.Normalize(b)
}

// Display returns the canonical class of a label in title case, the form
// reported on merged detections (e.g. "living room" -> "Living Room").
func (n *Normalizer) Display(name string) string {
	return n.titler.String(n.Normalize(name))
}
