// Package detection finds rectangular room candidates in floor-plan images.
//
// Floor plans are line drawings: walls show up as long straight edges and
// rooms as roughly rectangular enclosed contours. The package runs a small
// pipeline over the image:
//
//  1. Preprocess: grayscale conversion and a light box blur to suppress
//     scanning noise
//  2. Edge Detection: gradient thresholding to find wall pixels
//  3. Contour Finding: flood-fill grouping of connected edge pixels
//  4. Bounding Box + Rectangularity: each contour's bounding box is scored
//     by how closely the contour length matches the box perimeter
//  5. Filtering: contours below the minimum area or rectangularity are
//     dropped
//
// The result is a list of candidate room boxes with confidence scores that
// the floor-plan analyzer pairs with OCR'd room labels before fusion.
//
// Coordinates follow the standard image convention: origin at the top-left,
// X rightward, Y downward.
//
// These heuristics expect clean, high-contrast line drawings. Photographs or
// heavily compressed scans produce poor results.
package detection
