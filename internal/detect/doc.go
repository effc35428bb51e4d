// Package detect adapts the individual detectors to a common interface.
//
// Three detectors feed the fusion stage: a general object detector and an
// instance-segmentation detector, both DNN models run through OpenCV
// (available only in builds with the gocv tag), and a floor-plan analyzer
// that combines word-level OCR with contour-based room candidates and needs
// no model files at all.
//
// Every detector reports raw detections in the shared format; class
// filtering and score thresholds are applied here so the fusion stage only
// ever sees what the caller asked for.
package detect
