// Package imaging handles image decoding, normalization, and annotation.
//
// Uploaded floor-plan images arrive as raw bytes in PNG, JPEG, or GIF
// format. Decode turns them into image.Image values, Fit caps their
// dimensions so oversized scans do not blow up downstream analysis, and
// Annotate renders merged detections back onto the image with a color per
// source combination so a reader can see at a glance which detectors
// agreed on each box.
package imaging
