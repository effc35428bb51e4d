// Package fusion merges object detections produced independently by several
// detectors into one de-duplicated detection set with provenance.
//
// The package is the algorithmic core of planfuse. Everything around it is
// model loading, image I/O, HTTP plumbing, or visualization; the logic that
// decides which detections are the same object lives here.
//
// # Pipeline
//
// Three primitives feed the fuser:
//
//   - IoU: axis-aligned box overlap, the standard detection-matching metric
//   - Normalizer: maps free-text class labels to canonical categories so that
//     "Bedroom 2", "bed room" and "Master Bedroom" compare equal
//   - Fuser: greedy confidence-first clustering over the flattened detections
//
// The fuser sorts all detections by weighted confidence, seeds a cluster from
// the strongest unconsumed detection, and absorbs every later unconsumed
// detection of the same canonical class whose IoU with the seed exceeds the
// threshold. BuildSummary derives per-class and per-source statistics from
// the merged list.
//
// # Determinism
//
// Fusion is a pure function of its inputs and configuration. The sort is
// stable, ties are broken by input order, and re-running fusion on identical
// inputs yields identical output. No state is shared between calls, so the
// fuser is safe for concurrent use across independent images.
package fusion
