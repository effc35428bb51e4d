// Package server exposes the analysis pipeline over HTTP.
//
// The API accepts multipart image uploads and runs them through one
// detector or through all of them with cross-model fusion:
//
//	GET  /health         liveness probe
//	GET  /model/info     per-detector availability and class lists
//	POST /analyze        analyze one image (model_type selects the mode)
//	POST /analyze/batch  analyze up to a fixed number of images
//
// Uploads are validated before any pixel touches a detector: filename
// sanitization, an extension allow-list, a size cap, a decode check, and a
// dimension cap. Validation failures carry a request id so a client report
// can be matched to the server log.
package server
