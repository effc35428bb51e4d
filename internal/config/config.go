package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/intoaec/planfuse/internal/fusion"
)

type ServerConfig struct {
	Port           string `toml:"port"`
	MaxUploadMB    int    `toml:"max_upload_mb"`
	MaxImageDim    int    `toml:"max_image_dim"`
	MaxAnalysisDim int    `toml:"max_analysis_dim"`
	MaxBatchFiles  int    `toml:"max_batch_files"`
}

type FusionConfig struct {
	IoUThreshold    float64 `toml:"iou_threshold"`
	ObjectWeight    float64 `toml:"object_weight"`
	RegionWeight    float64 `toml:"region_weight"`
	FloorplanWeight float64 `toml:"floorplan_weight"`
}

type ModelsConfig struct {
	ObjectModelPath  string  `toml:"object_model_path"`
	RegionModelPath  string  `toml:"region_model_path"`
	RegionConfigPath string  `toml:"region_config_path"`
	ScoreFloor       float64 `toml:"score_floor"`
}

type OCRConfig struct {
	Language       string  `toml:"language"`
	MinConfidence  float64 `toml:"min_confidence"`
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`
	MinRoomArea    int     `toml:"min_room_area"`
	RoomTolerance  float64 `toml:"room_tolerance"`
}

type Config struct {
	Server ServerConfig `toml:"server"`
	Fusion FusionConfig `toml:"fusion"`
	Models ModelsConfig `toml:"models"`
	OCR    OCRConfig    `toml:"ocr"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	weights := fusion.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			MaxUploadMB:    10,
			MaxImageDim:    10000,
			MaxAnalysisDim: 2048,
			MaxBatchFiles:  10,
		},
		Fusion: FusionConfig{
			IoUThreshold:    weights.IoUThreshold,
			ObjectWeight:    weights.Weights[fusion.SourceObjects],
			RegionWeight:    weights.Weights[fusion.SourceRegions],
			FloorplanWeight: weights.Weights[fusion.SourceFloorplan],
		},
		Models: ModelsConfig{
			ObjectModelPath:  "models/objects.onnx",
			RegionModelPath:  "models/regions.pb",
			RegionConfigPath: "models/regions.pbtxt",
			ScoreFloor:       0.25,
		},
		OCR: OCRConfig{
			Language:       "eng",
			MinConfidence:  0.4,
			FuzzyThreshold: 75.0,
			MinRoomArea:    2000,
			RoomTolerance:  0.5,
		},
	}
}

// Load reads a TOML config file, fills unset fields from defaults, and
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied, for
// running without a config file.
func FromEnv() *Config {
	cfg := Default()
	cfg.applyEnv()
	return cfg
}

func (c *Config) applyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if path := os.Getenv("OBJECT_MODEL_PATH"); path != "" {
		c.Models.ObjectModelPath = path
	}
	if path := os.Getenv("REGION_MODEL_PATH"); path != "" {
		c.Models.RegionModelPath = path
	}
	if path := os.Getenv("REGION_CONFIG_PATH"); path != "" {
		c.Models.RegionConfigPath = path
	}
	if lang := os.Getenv("OCR_LANGUAGE"); lang != "" {
		c.OCR.Language = lang
	}
	if raw := os.Getenv("IOU_THRESHOLD"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			c.Fusion.IoUThreshold = v
		}
	}
}

// FusionSettings converts the fusion section into the fuser's own config
// type.
func (c *Config) FusionSettings() fusion.Config {
	return fusion.Config{
		IoUThreshold: c.Fusion.IoUThreshold,
		Weights: map[fusion.Source]float64{
			fusion.SourceObjects:   c.Fusion.ObjectWeight,
			fusion.SourceRegions:   c.Fusion.RegionWeight,
			fusion.SourceFloorplan: c.Fusion.FloorplanWeight,
		},
	}
}
