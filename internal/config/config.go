// Package config loads migration settings.
//
// Precedence, lowest first: defaults, YAML file, environment (including a
// .env file), command-line flags. Flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile      = "hostel-migrate.yaml"
	DefaultCredentialsFile = "config/serviceAccountKey.json"
	EnvPrefix              = "HOSTEL_MIGRATE_"
)

type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Target  TargetConfig  `yaml:"target"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Report  ReportConfig  `yaml:"report"`
}

type SourceConfig struct {
	Driver          string `yaml:"driver" validate:"required,oneof=firestore mongo json"`
	CredentialsFile string `yaml:"credentials_file" validate:"required_if=Driver firestore"`
	ProjectID       string `yaml:"project_id"`
	MongoURI        string `yaml:"mongo_uri" validate:"required_if=Driver mongo"`
	MongoDatabase   string `yaml:"mongo_database" validate:"required_if=Driver mongo"`
	JSONDir         string `yaml:"json_dir" validate:"required_if=Driver json"`
}

type TargetConfig struct {
	Driver      string `yaml:"driver" validate:"required,oneof=postgres mysql sqlite"`
	DSN         string `yaml:"dsn" validate:"required"`
	AutoMigrate bool   `yaml:"auto_migrate"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" validate:"omitempty,url"`
}

type ReportConfig struct {
	Dir         string `yaml:"dir"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Prefix    string `yaml:"s3_prefix"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint" validate:"omitempty,url"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Driver:          "firestore",
			CredentialsFile: DefaultCredentialsFile,
			MongoDatabase:   "hostel",
		},
		Target: TargetConfig{
			Driver: "postgres",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Report: ReportConfig{
			S3Prefix: "hostel-migrate/",
			S3Region: "us-east-1",
		},
	}
}

// LoadDotEnv loads variables from .env style files into the process
// environment without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads defaults, then the YAML file at path if it exists, then the
// environment. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"SOURCE_DRIVER":      &c.Source.Driver,
		"CREDENTIALS_FILE":   &c.Source.CredentialsFile,
		"PROJECT_ID":         &c.Source.ProjectID,
		"MONGO_URI":          &c.Source.MongoURI,
		"MONGO_DATABASE":     &c.Source.MongoDatabase,
		"JSON_DIR":           &c.Source.JSONDir,
		"TARGET_DRIVER":      &c.Target.Driver,
		"TARGET_DSN":         &c.Target.DSN,
		"LOG_LEVEL":          &c.Log.Level,
		"LOG_FORMAT":         &c.Log.Format,
		"PUSHGATEWAY_URL":    &c.Metrics.PushgatewayURL,
		"REPORT_DIR":         &c.Report.Dir,
		"REPORT_S3_BUCKET":   &c.Report.S3Bucket,
		"REPORT_S3_PREFIX":   &c.Report.S3Prefix,
		"REPORT_S3_REGION":   &c.Report.S3Region,
		"REPORT_S3_ENDPOINT": &c.Report.S3Endpoint,
	}
	for name, dst := range strs {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	// the backend's own connection string
	if c.Target.DSN == "" {
		if v, ok := lookup("DATABASE_URL"); ok {
			c.Target.DSN = v
		}
	}

	bools := map[string]*bool{
		"AUTO_MIGRATE":         &c.Target.AutoMigrate,
		"REPORT_S3_PATH_STYLE": &c.Report.S3PathStyle,
	}
	for name, dst := range bools {
		v, ok := lookup(EnvPrefix + name)
		if !ok || v == "" {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = b
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
