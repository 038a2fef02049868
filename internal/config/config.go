package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Face detector
	DetectorType         string  `envconfig:"DETECTOR_TYPE" default:"pigo"`
	DetectorScaleFactor  float64 `envconfig:"DETECTOR_SCALE_FACTOR" default:"1.1"`
	DetectorMinNeighbors int     `envconfig:"DETECTOR_MIN_NEIGHBORS" default:"5"`
	DetectorMinSize      int     `envconfig:"DETECTOR_MIN_SIZE" default:"30"`
	DetectorMaxSize      int     `envconfig:"DETECTOR_MAX_SIZE" default:"300"`
	CascadePath          string  `envconfig:"CASCADE_PATH" default:"models/facefinder"`

	// Emotion classifier
	ClassifierType  string   `envconfig:"CLASSIFIER_TYPE" default:"onnx"`
	ModelPaths      []string `envconfig:"MODEL_PATHS" default:"models/emotion.onnx"`
	ONNXLibraryPath string   `envconfig:"ONNX_LIBRARY_PATH" default:""`
	AWSRegion       string   `envconfig:"AWS_REGION" default:"us-east-1"`

	// Inference cache
	CacheCapacity int `envconfig:"CACHE_CAPACITY" default:"10"`

	// Streaming
	FrameSkipFactor  int `envconfig:"FRAME_SKIP_FACTOR" default:"2"`
	CaptureMaxWidth  int `envconfig:"CAPTURE_MAX_WIDTH" default:"640"`
	StreamQueueDepth int `envconfig:"STREAM_QUEUE_DEPTH" default:"3"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
