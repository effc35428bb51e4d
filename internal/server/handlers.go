package server

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/intoaec/planfuse/internal/detect"
	"github.com/intoaec/planfuse/internal/fusion"
	"github.com/intoaec/planfuse/internal/imaging"
)

// analysisOrder fixes the order detectors run in combined mode, which also
// fixes the order their detection lists reach the fuser.
var analysisOrder = []fusion.Source{
	fusion.SourceObjects,
	fusion.SourceRegions,
	fusion.SourceFloorplan,
}

const (
	modeObjects   = "objects"
	modeRegions   = "regions"
	modeFloorplan = "floorplan"
	modeCombined  = "combined"
)

type analyzeParams struct {
	ModelType    string
	KeepClasses  []string
	MinConf      float64
	IoUThreshold float64
}

func parseAnalyzeParams(c *gin.Context) (analyzeParams, error) {
	p := analyzeParams{ModelType: c.DefaultQuery("model_type", modeCombined)}

	switch p.ModelType {
	case modeObjects, modeRegions, modeFloorplan, modeCombined:
	default:
		return p, fmt.Errorf("model_type must be %q, %q, %q, or %q",
			modeObjects, modeRegions, modeFloorplan, modeCombined)
	}

	if raw := c.Query("keep_classes"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				p.KeepClasses = append(p.KeepClasses, name)
			}
		}
	}
	if raw := c.Query("min_conf"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 || v > 1 {
			return p, fmt.Errorf("min_conf must be a number between 0 and 1")
		}
		p.MinConf = v
	}
	if raw := c.Query("iou_threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 || v >= 1 {
			return p, fmt.Errorf("iou_threshold must be a number between 0 and 1")
		}
		p.IoUThreshold = v
	}
	return p, nil
}

// fail sends an error response tagged with a request id that also goes to
// the log, so client reports can be matched to server entries.
func fail(c *gin.Context, status int, msg string) {
	id := uuid.NewString()
	log.Printf("request %s failed: %s", id, msg)
	c.JSON(status, gin.H{"success": false, "error": msg, "request_id": id})
}

// Health is the liveness probe.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ModelInfo reports which detectors this deployment can run and what
// classes each one emits.
func (s *Server) ModelInfo(c *gin.Context) {
	available := make([]string, 0, len(analysisOrder))
	models := gin.H{}
	for _, src := range analysisOrder {
		d, ok := s.detectors[src]
		entry := gin.H{"available": ok && d.Available()}
		if ok && d.Available() {
			available = append(available, string(src))
			entry["classes"] = d.Classes()
		}
		models[string(src)] = entry
	}
	c.JSON(http.StatusOK, gin.H{
		"available_models": available,
		"models":           models,
	})
}

// Analyze runs one uploaded image through the selected detector, or through
// all of them with fusion in combined mode.
func (s *Server) Analyze(c *gin.Context) {
	params, err := parseAnalyzeParams(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "missing file upload field 'file'")
		return
	}

	result, status := s.analyzeOne(c.Request.Context(), file, params)
	c.JSON(status, result)
}

// AnalyzeBatch runs several uploads through one detector. Combined mode is
// per-image work of three detectors plus fusion; batching it invites
// timeouts, so the batch endpoint only accepts single-detector modes.
func (s *Server) AnalyzeBatch(c *gin.Context) {
	params, err := parseAnalyzeParams(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if params.ModelType == modeCombined {
		fail(c, http.StatusBadRequest, "batch analysis supports single-detector modes only")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid multipart form")
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		fail(c, http.StatusBadRequest, "no files uploaded in field 'files'")
		return
	}
	if len(files) > s.cfg.Server.MaxBatchFiles {
		fail(c, http.StatusBadRequest,
			fmt.Sprintf("too many files: %d exceeds the batch limit of %d", len(files), s.cfg.Server.MaxBatchFiles))
		return
	}

	results := make([]gin.H, 0, len(files))
	succeeded := 0
	for _, file := range files {
		result, status := s.analyzeOne(c.Request.Context(), file, params)
		if status == http.StatusOK {
			succeeded++
		}
		results = append(results, result)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"total":      len(files),
		"succeeded":  succeeded,
		"model_used": params.ModelType,
		"results":    results,
	})
}

// analyzeOne validates, decodes, and analyzes a single upload, returning
// the response body and HTTP status.
//
// Oversized uploads are downscaled to the configured working resolution
// before any detector runs; detection boxes and the result image are
// reported in working-image coordinates.
func (s *Server) analyzeOne(ctx context.Context, file *multipart.FileHeader, params analyzeParams) (gin.H, int) {
	data, err := readUpload(file, s.cfg.Server.MaxUploadMB*1024*1024)
	if err != nil {
		return errorBody(err.Error()), http.StatusBadRequest
	}

	img, info, clean, err := ValidateUpload(file.Filename, data, s.cfg.Server.MaxUploadMB*1024*1024, s.cfg.Server.MaxImageDim)
	if err != nil {
		return errorBody(err.Error()), http.StatusBadRequest
	}

	if dim := s.cfg.Server.MaxAnalysisDim; dim > 0 {
		img = imaging.Fit(img, dim)
	}

	if params.ModelType == modeCombined {
		return s.analyzeCombined(ctx, img, info, clean, params)
	}
	return s.analyzeSingle(ctx, img, info, clean, params)
}

func (s *Server) analyzeSingle(ctx context.Context, img image.Image, info *imaging.Info, filename string, params analyzeParams) (gin.H, int) {
	src := fusion.Source(params.ModelType)
	d, ok := s.detectors[src]
	if !ok || !d.Available() {
		return errorBody(fmt.Sprintf("model %q is not available in this deployment", params.ModelType)),
			http.StatusServiceUnavailable
	}

	dets, err := d.Detect(ctx, img)
	if err != nil {
		return errorBody(fmt.Sprintf("analysis with %q failed: %v", params.ModelType, err)),
			http.StatusInternalServerError
	}
	dets = detect.FilterClasses(dets, params.KeepClasses)
	dets = detect.FilterConfidence(dets, params.MinConf)

	annotated, err := imaging.EncodePNGBase64(imaging.Annotate(img, asMerged(dets)))
	if err != nil {
		return errorBody(fmt.Sprintf("failed to render result image: %v", err)),
			http.StatusInternalServerError
	}

	return gin.H{
		"success":    true,
		"filename":   filename,
		"model_used": params.ModelType,
		"image":      info,
		"analysis_results": gin.H{
			"detections":          dets,
			"total_detections":    len(dets),
			"detections_by_class": countByClass(dets),
		},
		"result_image": annotated,
		"message": fmt.Sprintf("Successfully analyzed %s with %s. Found %d detections.",
			filename, params.ModelType, len(dets)),
	}, http.StatusOK
}

func (s *Server) analyzeCombined(ctx context.Context, img image.Image, info *imaging.Info, filename string, params analyzeParams) (gin.H, int) {
	modelsRun := make([]string, 0, len(analysisOrder))
	lists := make([][]fusion.RawDetection, 0, len(analysisOrder))
	for _, src := range analysisOrder {
		d, ok := s.detectors[src]
		if !ok || !d.Available() {
			continue
		}
		dets, err := d.Detect(ctx, img)
		if err != nil {
			// One broken detector must not sink the whole analysis.
			log.Printf("detector %s failed on %s: %v", src, filename, err)
			dets = []fusion.RawDetection{}
		}
		dets = detect.FilterClasses(dets, params.KeepClasses)
		dets = detect.FilterConfidence(dets, params.MinConf)
		lists = append(lists, dets)
		modelsRun = append(modelsRun, string(src))
	}
	if len(modelsRun) == 0 {
		return errorBody("no detectors are available in this deployment"), http.StatusServiceUnavailable
	}

	merged, err := s.fuserFor(params.IoUThreshold).Fuse(lists...)
	if err != nil {
		return errorBody(fmt.Sprintf("fusion failed: %v", err)), http.StatusInternalServerError
	}
	summary := fusion.BuildSummary(merged)

	annotated, err := imaging.EncodePNGBase64(imaging.Annotate(img, merged))
	if err != nil {
		return errorBody(fmt.Sprintf("failed to render result image: %v", err)),
			http.StatusInternalServerError
	}

	return gin.H{
		"success":    true,
		"filename":   filename,
		"model_used": modeCombined,
		"models_run": modelsRun,
		"image":      info,
		"analysis_results": gin.H{
			"detections": merged,
			"summary":    summary,
		},
		"result_image": annotated,
		"message": fmt.Sprintf("Successfully analyzed %s with %d models. Found %d merged detections.",
			filename, len(modelsRun), len(merged)),
	}, http.StatusOK
}

func errorBody(msg string) gin.H {
	id := uuid.NewString()
	log.Printf("request %s failed: %s", id, msg)
	return gin.H{"success": false, "error": msg, "request_id": id}
}

func readUpload(file *multipart.FileHeader, maxBytes int) ([]byte, error) {
	if file.Size > int64(maxBytes) {
		return nil, fmt.Errorf("file exceeds the %d byte limit", maxBytes)
	}
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(maxBytes)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxBytes {
		return nil, fmt.Errorf("file exceeds the %d byte limit", maxBytes)
	}
	return data, nil
}

// asMerged wraps raw detections so single-model results can reuse the
// merged-detection renderer.
func asMerged(dets []fusion.RawDetection) []fusion.MergedDetection {
	out := make([]fusion.MergedDetection, len(dets))
	for i, det := range dets {
		out[i] = fusion.MergedDetection{
			ClassName:         det.ClassName,
			ClassID:           det.ClassID,
			Confidence:        det.Confidence,
			Box:               det.Box,
			Sources:           []fusion.Source{det.Source},
			SourceConfidences: map[fusion.Source]float64{det.Source: det.Confidence},
			FuzzyScore:        det.FuzzyScore,
			NumModels:         1,
		}
	}
	return out
}

func countByClass(dets []fusion.RawDetection) map[string]int {
	counts := make(map[string]int)
	for _, det := range dets {
		counts[det.ClassName]++
	}
	return counts
}
