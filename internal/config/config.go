package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultProfile  = "default"
	DefaultRegion   = "us-east-1"
	DefaultDetector = "textract"
	DefaultDPI      = 150
)

type Config struct {
	InputPath   string   `yaml:"input"`
	Detector    string   `yaml:"detector"`
	Profile     string   `yaml:"profile"`
	Region      string   `yaml:"region"`
	DPI         int      `yaml:"dpi"`
	Languages   []string `yaml:"languages"`
	NoView      bool     `yaml:"no_view"`
	WordEndOnly bool     `yaml:"word_end_only"`
	ShowStats   bool     `yaml:"show_stats"`
}

// LoadOptions points Load at explicit files. Empty paths fall back to
// ".env" in the working directory and no YAML file.
type LoadOptions struct {
	EnvFile    string
	ConfigFile string
}

func Default() *Config {
	return &Config{
		Detector:  DefaultDetector,
		Profile:   DefaultProfile,
		Region:    DefaultRegion,
		DPI:       DefaultDPI,
		Languages: []string{"eng"},
	}
}

// Load resolves configuration in order: defaults, YAML file, environment
// (including values from the .env file). Flags are applied by the caller.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if _, err := os.Stat(envFile); err == nil {
		// godotenv.Load leaves already-set variables alone.
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	} else if opts.EnvFile != "" {
		return nil, fmt.Errorf("env file: %w", err)
	}

	if opts.ConfigFile != "" {
		if err := cfg.readYAML(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("OCR_INPUT"); v != "" {
		c.InputPath = v
	}
	if v := os.Getenv("OCR_DETECTOR"); v != "" {
		c.Detector = v
	}
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		c.Profile = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("OCR_DPI"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("OCR_DPI: invalid value %q", v)
		}
		c.DPI = n
	}
	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		c.Languages = SplitList(v)
	}
	for name, dst := range map[string]*bool{
		"OCR_NO_VIEW":       &c.NoView,
		"OCR_WORD_END_ONLY": &c.WordEndOnly,
		"OCR_SHOW_STATS":    &c.ShowStats,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: invalid value %q", name, v)
		}
		*dst = b
	}
	return nil
}

// Validate checks the fields the pipeline depends on.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("input path is not set")
	}
	if c.DPI <= 0 {
		return fmt.Errorf("dpi must be positive, got %d", c.DPI)
	}
	isTextract := c.Detector == "" || strings.EqualFold(c.Detector, DefaultDetector)
	if isTextract && c.Region == "" {
		return fmt.Errorf("region is required for the textract detector")
	}
	return nil
}

// SplitList splits a comma-separated value, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
