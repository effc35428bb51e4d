package fusion

// Summary aggregates a fused detection list into the statistics reported
// alongside it. All fields are pure re-derivations of the merged list.
type Summary struct {
	// TotalDetections is the length of the merged list.
	TotalDetections int `json:"total_detections"`

	// DetectionsByClass counts clusters per canonical class name.
	DetectionsByClass map[string]int `json:"detections_by_class"`

	// DetectionsBySourceCount buckets clusters by how many detectors agreed
	// on them. Buckets 1..3 are always present; with three detectors a
	// higher bucket cannot occur.
	DetectionsBySourceCount map[int]int `json:"detections_by_source_count"`

	// ModelContributions counts, per source, the clusters that include it.
	ModelContributions map[Source]int `json:"model_contributions"`

	// UniqueClasses is the number of distinct canonical classes seen.
	UniqueClasses int `json:"unique_classes"`
}

// BuildSummary computes summary statistics for a fused detection list.
//
// The invariants sum(DetectionsByClass) == TotalDetections and
// sum(DetectionsBySourceCount) == TotalDetections hold for any input.
func BuildSummary(merged []MergedDetection) Summary {
	s := Summary{
		TotalDetections:         len(merged),
		DetectionsByClass:       make(map[string]int),
		DetectionsBySourceCount: map[int]int{1: 0, 2: 0, 3: 0},
		ModelContributions:      make(map[Source]int),
	}
	for _, src := range knownSources {
		s.ModelContributions[src] = 0
	}

	for _, det := range merged {
		s.DetectionsByClass[det.ClassName]++
		s.DetectionsBySourceCount[det.NumModels]++
		for _, src := range det.Sources {
			s.ModelContributions[src]++
		}
	}

	s.UniqueClasses = len(s.DetectionsByClass)
	return s
}
