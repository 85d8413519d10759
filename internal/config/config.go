package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the application configuration
type Config struct {
	Vision    VisionConfig    `json:"vision"`
	Annotator AnnotatorConfig `json:"annotator"`
	Output    OutputConfig    `json:"output"`
}

// VisionConfig holds configuration for the issue-detection backend
type VisionConfig struct {
	Backend     string `json:"backend"`
	ServerURL   string `json:"server_url"`
	Model       string `json:"model"`
	SendFormat  string `json:"send_format"`
	SendMaxDim  int    `json:"send_max_dim"`
	SendQuality int    `json:"send_quality"`
}

// AnnotatorConfig holds configuration for callout rendering
type AnnotatorConfig struct {
	MaxCards     int     `json:"max_cards"`
	CornerRadius float64 `json:"corner_radius"`
	ArrowWidth   float64 `json:"arrow_width"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	OutputDir string `json:"output_dir"`
	Suffix    string `json:"suffix"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Vision: VisionConfig{
			Backend:     "llamacpp",
			ServerURL:   "",
			Model:       "openbmb/minicpm-v4.5",
			SendFormat:  "jpg",
			SendMaxDim:  1536,
			SendQuality: 85,
		},
		Annotator: AnnotatorConfig{
			MaxCards:     3,
			CornerRadius: 8,
			ArrowWidth:   2,
		},
		Output: OutputConfig{
			Format:    "",
			Quality:   90,
			OutputDir: "./out",
			Suffix:    "_annotated",
		},
	}
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Vision.Backend {
	case "ollama", "llamacpp":
	default:
		return fmt.Errorf("vision.backend must be 'ollama' or 'llamacpp'")
	}

	if c.Vision.Model == "" {
		return fmt.Errorf("vision.model cannot be empty")
	}

	if c.Vision.SendQuality < 1 || c.Vision.SendQuality > 100 {
		return fmt.Errorf("vision.send_quality must be between 1 and 100")
	}

	if c.Vision.SendMaxDim < 0 {
		return fmt.Errorf("vision.send_max_dim must not be negative")
	}

	if c.Annotator.MaxCards < 1 {
		return fmt.Errorf("annotator.max_cards must be positive")
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "problem-scanner", "config.json")
}
