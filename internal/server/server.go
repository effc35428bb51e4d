package server

import (
	"github.com/gin-gonic/gin"

	"github.com/intoaec/planfuse/internal/config"
	"github.com/intoaec/planfuse/internal/detect"
	"github.com/intoaec/planfuse/internal/fusion"
)

// Server holds the detectors and fusion settings shared across requests.
type Server struct {
	cfg        *config.Config
	normalizer *fusion.Normalizer
	detectors  map[fusion.Source]detect.Detector
}

// NewServer wires the detectors into a server. Detectors that failed to
// load may simply be omitted; their modes then report unavailable instead
// of failing at startup.
func NewServer(cfg *config.Config, detectors ...detect.Detector) *Server {
	bymodel := make(map[fusion.Source]detect.Detector, len(detectors))
	for _, d := range detectors {
		bymodel[d.Source()] = d
	}
	return &Server{
		cfg:        cfg,
		normalizer: fusion.DefaultNormalizer(),
		detectors:  bymodel,
	}
}

// SetupRouter builds the gin engine with all routes registered.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", s.Health)
	r.GET("/model/info", s.ModelInfo)
	r.POST("/analyze", s.Analyze)
	r.POST("/analyze/batch", s.AnalyzeBatch)

	return r
}

// fuserFor builds a fuser for one request, honoring a per-request IoU
// threshold override.
func (s *Server) fuserFor(iouThreshold float64) *fusion.Fuser {
	fc := s.cfg.FusionSettings()
	if iouThreshold > 0 {
		fc.IoUThreshold = iouThreshold
	}
	return fusion.NewFuser(fc, s.normalizer)
}
