package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/intoaec/planfuse/internal/config"
	"github.com/intoaec/planfuse/internal/detect"
	"github.com/intoaec/planfuse/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("planfuse %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("planfuse - floor-plan analysis server with multi-detector fusion")
			fmt.Println()
			fmt.Println("Usage: planfuse [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  PORT                  HTTP listen port (default 8080)")
			fmt.Println("  CONFIG_PATH           Path to the TOML config file")
			fmt.Println("  OBJECT_MODEL_PATH     Object detection model (ONNX)")
			fmt.Println("  REGION_MODEL_PATH     Instance-segmentation model weights")
			fmt.Println("  REGION_CONFIG_PATH    Instance-segmentation graph config")
			fmt.Println("  OCR_LANGUAGE          Tesseract language code (default eng)")
			fmt.Println("  IOU_THRESHOLD         Default fusion IoU threshold")
			return
		}
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	cfg := loadConfig()
	srv := server.NewServer(cfg, buildDetectors(cfg)...)

	log.Printf("planfuse %s listening on port %s", Version, cfg.Server.Port)
	if err := srv.SetupRouter().Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func loadConfig() *config.Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.toml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Printf("Could not load %s (%v), using defaults with env overrides", path, err)
		return config.FromEnv()
	}
	return cfg
}

// buildDetectors loads whatever detectors this build and environment can
// support. A model that fails to load is logged and skipped; its mode then
// reports unavailable instead of keeping the whole server down.
func buildDetectors(cfg *config.Config) []detect.Detector {
	var detectors []detect.Detector

	if obj, err := detect.NewObjectDetector(cfg.Models.ObjectModelPath,
		detect.DefaultObjectClasses, cfg.Models.ScoreFloor); err != nil {
		log.Printf("Object detector unavailable: %v", err)
	} else {
		detectors = append(detectors, obj)
	}

	if reg, err := detect.NewRegionDetector(cfg.Models.RegionModelPath,
		cfg.Models.RegionConfigPath, detect.DefaultRegionClasses, cfg.Models.ScoreFloor); err != nil {
		log.Printf("Region detector unavailable: %v", err)
	} else {
		detectors = append(detectors, reg)
	}

	fp := detect.NewFloorplanDetector()
	fp.Language = cfg.OCR.Language
	fp.MinConfidence = cfg.OCR.MinConfidence
	fp.FuzzyThreshold = cfg.OCR.FuzzyThreshold
	fp.MinRoomArea = cfg.OCR.MinRoomArea
	fp.RoomTolerance = cfg.OCR.RoomTolerance
	detectors = append(detectors, fp)

	return detectors
}
