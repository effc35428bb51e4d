package fusion

import (
	"fmt"
	"math"
	"sort"
)

// Source identifies the detector that produced a detection.
type Source string

// The detectors feeding the fuser. The set is small and fixed in practice
// but nothing in the algorithm depends on it: any source present in the
// fuser's weight map is accepted.
const (
	SourceObjects   Source = "objects"   // general DNN object detector
	SourceRegions   Source = "regions"   // instance-segmentation detector
	SourceFloorplan Source = "floorplan" // OCR + contour floor-plan analyzer
)

// knownSources is the order sources appear in summaries and legends.
var knownSources = []Source{SourceObjects, SourceRegions, SourceFloorplan}

// RawDetection is a single detector hit as emitted by one source.
type RawDetection struct {
	// Source identifies the originating detector.
	Source Source `json:"source"`

	// ClassName is the free-text label as emitted by the detector.
	ClassName string `json:"class_name"`

	// ClassID is the detector-local class index, -1 when not applicable
	// (OCR-sourced detections have no class vocabulary).
	ClassID int `json:"class_id"`

	// Confidence is the detector's confidence in [0, 1].
	Confidence float64 `json:"confidence"`

	// Box is the detection's bounding box in absolute pixel coordinates.
	Box Box `json:"bbox"`

	// FuzzyScore is the text-to-vocabulary match confidence for OCR-sourced
	// detections, nil for detectors that do not read text.
	FuzzyScore *float64 `json:"fuzzy_score,omitempty"`
}

// Validate checks the caller contract for a raw detection. Violations are
// programming errors in the detector adapter, not recoverable conditions.
func (d RawDetection) Validate() error {
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return fmt.Errorf("detection %q from %s: confidence %v outside [0,1]", d.ClassName, d.Source, d.Confidence)
	}
	if !d.Box.finite() {
		return fmt.Errorf("detection %q from %s: non-finite bounding box", d.ClassName, d.Source)
	}
	return nil
}

// MergedDetection is one fused cluster: a single reported detection with
// provenance across the sources that contributed to it.
type MergedDetection struct {
	// ClassName is the canonical, title-cased class of the cluster.
	ClassName string `json:"class_name"`

	// ClassID is the seed detection's detector-local class index.
	ClassID int `json:"class_id"`

	// Confidence is the mean of the per-source raw confidences.
	Confidence float64 `json:"confidence"`

	// Box is the seed detection's bounding box — the box of the
	// highest-weighted-confidence member, not a geometric average.
	Box Box `json:"bbox"`

	// Sources lists the distinct contributing detectors in absorption order.
	Sources []Source `json:"sources"`

	// SourceConfidences maps each contributing source to its raw confidence.
	// A source appears at most once per cluster.
	SourceConfidences map[Source]float64 `json:"source_confidences"`

	// FuzzyScore is the maximum fuzzy score across absorbed members, nil if
	// no member carried one.
	FuzzyScore *float64 `json:"fuzzy_score,omitempty"`

	// NumModels is len(Sources), the cross-validation count.
	NumModels int `json:"num_models_detected"`
}

// Config holds the fusion parameters. A Config is never mutated by the
// fuser; construct one (or take DefaultConfig) and pass it explicitly.
type Config struct {
	// IoUThreshold is the overlap above which same-class detections merge.
	IoUThreshold float64

	// Weights scales each source's confidence for seeding order. A source
	// absent from this map is rejected: there is no silent default weight.
	Weights map[Source]float64
}

// DefaultConfig returns the standard fusion parameters: IoU threshold 0.3
// and a slightly reduced trust weight for the OCR-based analyzer.
func DefaultConfig() Config {
	return Config{
		IoUThreshold: 0.3,
		Weights: map[Source]float64{
			SourceObjects:   1.0,
			SourceRegions:   1.0,
			SourceFloorplan: 0.9,
		},
	}
}

// Fuser merges per-source detection lists into a de-duplicated set.
type Fuser struct {
	cfg  Config
	norm *Normalizer
}

// NewFuser builds a Fuser from a config and a class normalizer.
func NewFuser(cfg Config, norm *Normalizer) *Fuser {
	return &Fuser{cfg: cfg, norm: norm}
}

// flat is one detection in the fusion arena, tagged with its seeding weight.
type flat struct {
	RawDetection
	weighted float64
}

// Fuse merges the given detection lists into clusters.
//
// Lists are flattened in argument order, each detection keeping its in-list
// position, and sorted descending by weighted confidence with a stable sort.
// That ordering is load-bearing: it decides which detection seeds each
// cluster and therefore which bounding box the merged result reports.
//
// # Clustering
//
// The sorted arena is walked with a consumed marker per index. Each
// unconsumed detection seeds a new cluster; every later unconsumed detection
// of the same canonical class whose IoU with the seed exceeds the threshold
// is absorbed, at most one per source. Absorption records the member's raw
// confidence, recomputes the cluster confidence as the mean over recorded
// confidences, and keeps the maximum fuzzy score seen.
//
// Clusters are emitted in seed order, i.e. ranked by weighted confidence.
//
// # Errors
//
// Fuse fails fast on a detection whose source has no configured weight or
// whose fields violate the input contract (see RawDetection.Validate).
// Empty input is not an error and yields an empty, non-nil slice.
//
// Greedy matching is O(n²) in the total detection count, which is fine for
// the tens of detections a floor plan produces.
func (f *Fuser) Fuse(lists ...[]RawDetection) ([]MergedDetection, error) {
	arena := make([]flat, 0)
	for _, list := range lists {
		for _, det := range list {
			if err := det.Validate(); err != nil {
				return nil, err
			}
			weight, ok := f.cfg.Weights[det.Source]
			if !ok {
				return nil, fmt.Errorf("no confidence weight configured for source %q", det.Source)
			}
			arena = append(arena, flat{RawDetection: det, weighted: det.Confidence * weight})
		}
	}

	merged := make([]MergedDetection, 0, len(arena))
	if len(arena) == 0 {
		return merged, nil
	}

	sort.SliceStable(arena, func(i, j int) bool {
		return arena[i].weighted > arena[j].weighted
	})

	consumed := make([]bool, len(arena))

	for i := range arena {
		if consumed[i] {
			continue
		}
		seed := arena[i]
		consumed[i] = true

		cluster := MergedDetection{
			ClassID:           seed.ClassID,
			Confidence:        seed.Confidence,
			Box:               seed.Box,
			Sources:           []Source{seed.Source},
			SourceConfidences: map[Source]float64{seed.Source: seed.Confidence},
			FuzzyScore:        copyScore(seed.FuzzyScore),
		}

		for j := i + 1; j < len(arena); j++ {
			if consumed[j] {
				continue
			}
			cand := arena[j]

			// One slot per source: a second detection from a source already
			// in the cluster is left for a later cluster of its own.
			if _, taken := cluster.SourceConfidences[cand.Source]; taken {
				continue
			}
			if !f.norm.SameClass(seed.ClassName, cand.ClassName) {
				continue
			}
			if IoU(seed.Box, cand.Box) <= f.cfg.IoUThreshold {
				continue
			}

			cluster.Sources = append(cluster.Sources, cand.Source)
			cluster.SourceConfidences[cand.Source] = cand.Confidence
			cluster.Confidence = meanConfidence(cluster.SourceConfidences)
			cluster.FuzzyScore = maxScore(cluster.FuzzyScore, cand.FuzzyScore)
			consumed[j] = true
		}

		cluster.ClassName = f.norm.Display(seed.ClassName)
		cluster.NumModels = len(cluster.Sources)
		merged = append(merged, cluster)
	}

	return merged, nil
}

func meanConfidence(confidences map[Source]float64) float64 {
	sum := 0.0
	for _, c := range confidences {
		sum += c
	}
	return sum / float64(len(confidences))
}

func copyScore(s *float64) *float64 {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// maxScore keeps the higher of two optional fuzzy scores; an absent score
// does not contribute.
func maxScore(current, candidate *float64) *float64 {
	if candidate == nil {
		return current
	}
	if current == nil {
		return copyScore(candidate)
	}
	if *candidate > *current {
		return copyScore(candidate)
	}
	return current
}
