// Package config loads nest-swag settings from a YAML file, .env files and
// the environment. Command line flags are applied last by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file read when none is given.
const DefaultFile = "nest-swag.yaml"

// Config is the complete nest-swag configuration.
type Config struct {
	SearchDirs         []string `yaml:"searchDirs" validate:"required_without=Manifest,dive,required"`
	Manifest           string   `yaml:"manifest"`
	Excludes           []string `yaml:"excludes"`
	Extensions         []string `yaml:"extensions" validate:"dive,startswith=."`
	MaxFileSize        int64    `yaml:"maxFileSize" validate:"gte=0"`
	OutputDir          string   `yaml:"outputDir" validate:"required"`
	OutputTypes        []string `yaml:"outputTypes" validate:"min=1,dive,oneof=json yaml yml docs"`
	PropNamingStrategy string   `yaml:"propertyStrategy" validate:"omitempty,oneof=original camelcase pascalcase snakecase"`
	OverridesFile      string   `yaml:"overridesFile"`
	GeneralInfo        string   `yaml:"generalInfo"`
	Strict             bool     `yaml:"strict"`
	Prune              bool     `yaml:"prune"`

	Info      Info      `yaml:"info"`
	Store     Store     `yaml:"store"`
	Artifacts Artifacts `yaml:"artifacts"`
	Summarize Summarize `yaml:"summarize"`
}

// Info fills the OpenAPI info block. Set fields win over the general info
// file.
type Info struct {
	Title       string `yaml:"title"`
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
	Host        string `yaml:"host" validate:"omitempty,hostname_port|hostname"`
	BasePath    string `yaml:"basePath" validate:"omitempty,startswith=/"`
}

// Store configures the Postgres document store. An empty URL disables it.
type Store struct {
	DatabaseURL string `yaml:"databaseUrl"`
}

// Artifacts configures uploads of generated files.
type Artifacts struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint" validate:"required_if=Enabled true"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey" validate:"required_if=Enabled true"`
	SecretKey string `yaml:"secretKey" validate:"required_if=Enabled true"`
	Bucket    string `yaml:"bucket" validate:"required_if=Enabled true"`
	Prefix    string `yaml:"prefix"`
	UseSSL    bool   `yaml:"useSSL"`
}

// Summarize configures generated summaries for undocumented endpoints.
type Summarize struct {
	Enabled bool   `yaml:"enabled"`
	APIKey  string `yaml:"apiKey" validate:"required_if=Enabled true"`
	Model   string `yaml:"model"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		SearchDirs:  []string{"./"},
		OutputDir:   "./docs",
		OutputTypes: []string{"json", "yaml"},
		Artifacts: Artifacts{
			Region: "us-east-1",
			UseSSL: true,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing
// DefaultFile is not an error; unknown keys are.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if path == DefaultFile && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables already set. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}
	return nil
}

// ApplyEnv overrides cfg with the environment as seen through getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	env := func(key string) string {
		return strings.TrimSpace(getenv(key))
	}
	setString := func(dst *string, key string) {
		if v := env(key); v != "" {
			*dst = v
		}
	}
	setList := func(dst *[]string, key string) {
		if v := env(key); v != "" {
			*dst = SplitList(v)
		}
	}
	setBool := func(dst *bool, key string) {
		if v, err := strconv.ParseBool(env(key)); err == nil {
			*dst = v
		}
	}

	setList(&cfg.SearchDirs, "NEST_SWAG_SEARCH_DIRS")
	setString(&cfg.Manifest, "NEST_SWAG_MANIFEST")
	setList(&cfg.Excludes, "NEST_SWAG_EXCLUDES")
	setString(&cfg.OutputDir, "NEST_SWAG_OUTPUT_DIR")
	setList(&cfg.OutputTypes, "NEST_SWAG_OUTPUT_TYPES")
	setString(&cfg.PropNamingStrategy, "NEST_SWAG_PROPERTY_STRATEGY")
	setBool(&cfg.Strict, "NEST_SWAG_STRICT")
	setString(&cfg.GeneralInfo, "NEST_SWAG_GENERAL_INFO")
	setString(&cfg.Info.Title, "NEST_SWAG_TITLE")
	setString(&cfg.Info.Version, "NEST_SWAG_VERSION")
	setString(&cfg.Info.Host, "NEST_SWAG_HOST")
	setString(&cfg.Info.BasePath, "NEST_SWAG_BASE_PATH")

	setString(&cfg.Store.DatabaseURL, "DATABASE_URL")

	if v := env("ARTIFACT_S3_ENDPOINT"); v != "" {
		cfg.Artifacts.Enabled = true
		cfg.Artifacts.Endpoint = v
	}
	setString(&cfg.Artifacts.Region, "ARTIFACT_S3_REGION")
	setString(&cfg.Artifacts.AccessKey, "ARTIFACT_S3_ACCESS_KEY")
	setString(&cfg.Artifacts.SecretKey, "ARTIFACT_S3_SECRET_KEY")
	setString(&cfg.Artifacts.Bucket, "ARTIFACT_S3_BUCKET")
	setString(&cfg.Artifacts.Prefix, "ARTIFACT_S3_PREFIX")
	setBool(&cfg.Artifacts.UseSSL, "ARTIFACT_S3_USE_SSL")

	setBool(&cfg.Summarize.Enabled, "NEST_SWAG_SUMMARIZE")
	setString(&cfg.Summarize.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Summarize.Model, "GEMINI_MODEL")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report YAML key names so errors match the config file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration and lists every invalid key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %s", strings.TrimPrefix(fe.Namespace(), "Config."), describeTag(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func describeTag(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// SplitList splits a comma separated list, dropping empty entries.
func SplitList(list string) []string {
	result := []string{}
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	return result
}
