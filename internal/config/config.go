package config

import "fmt"

// Config holds the runtime configuration. It is built from defaults and
// command line flags only; there is no config file.
type Config struct {
	Detector DetectorConfig
	Output   OutputConfig
	Logging  LoggingConfig
}

// DetectorConfig holds the face detector tuning. Fixed for the whole run.
type DetectorConfig struct {
	MinFaceSize    int
	MaxFaceSize    int // 0 means the longer image side
	ScoreThreshold float64
	PyramidScale   float64 // image shrink factor per pyramid level, in (0,1)
	StepX          int
	StepY          int
	ClusterIoU     float64
	ModelPath      string // empty means the embedded model
}

// OutputConfig holds configuration for writing crops
type OutputConfig struct {
	JPEGQuality  int
	WebPQuality  float32
	WebPLossless bool
	ReportPath   string
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Verbose bool
	File    string
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Detector: DetectorConfig{
			MinFaceSize:    20,
			MaxFaceSize:    0,
			ScoreThreshold: 2.0,
			PyramidScale:   0.8,
			StepX:          4,
			StepY:          4,
			ClusterIoU:     0.2,
		},
		Output: OutputConfig{
			JPEGQuality:  95,
			WebPQuality:  90,
			WebPLossless: false,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Detector.MinFaceSize < 1 {
		return fmt.Errorf("detector.min_face_size must be positive")
	}

	if c.Detector.MaxFaceSize != 0 && c.Detector.MaxFaceSize < c.Detector.MinFaceSize {
		return fmt.Errorf("detector.max_face_size must be 0 or at least min_face_size")
	}

	if c.Detector.PyramidScale <= 0 || c.Detector.PyramidScale >= 1 {
		return fmt.Errorf("detector.pyramid_scale must be between 0 and 1 (exclusive)")
	}

	if c.Detector.StepX < 1 || c.Detector.StepY < 1 {
		return fmt.Errorf("detector.step must be positive")
	}

	if c.Detector.ClusterIoU < 0 || c.Detector.ClusterIoU > 1 {
		return fmt.Errorf("detector.cluster_iou must be between 0 and 1")
	}

	if c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100 {
		return fmt.Errorf("output.jpeg_quality must be between 1 and 100")
	}

	if c.Output.WebPQuality < 0 || c.Output.WebPQuality > 100 {
		return fmt.Errorf("output.webp_quality must be between 0 and 100")
	}

	return nil
}
