// Package ocr extracts room labels from floor-plan images.
//
// Text recognition runs through Tesseract (via gosseract) at word level,
// yielding each word with its bounding box and recognition confidence.
// Because OCR on architectural drawings is noisy ("Bedrcom", "K1tchen"),
// recognized words are fuzzy-matched against a vocabulary of common room
// names; the match score travels with the detection as its fuzzy score,
// orthogonal to the OCR confidence.
//
// Tesseract requires cgo and an installed libtesseract with language data.
package ocr
