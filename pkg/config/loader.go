package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const defaultDotEnv = ".env"

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file        string
	dotenv      []string
	environment map[string]string
}

// WithFile reads a YAML config file. A missing file is an error.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		o.file = path
	}
}

// WithDotEnv reads the given .env files instead of the default ./.env.
// Missing files are an error.
func WithDotEnv(files ...string) LoadOption {
	return func(o *loadOptions) {
		o.dotenv = files
	}
}

// WithEnvironment replaces the process environment as the variable source.
func WithEnvironment(environ map[string]string) LoadOption {
	return func(o *loadOptions) {
		o.environment = environ
	}
}

// Load builds the configuration in layers: defaults, then the YAML file,
// then the environment. Variables defined in .env files fill in only what the
// environment does not already set. The result is validated.
func Load(opts ...LoadOption) (Config, error) {
	o := loadOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := Default()

	if o.file != "" {
		if err := readYAML(o.file, &cfg); err != nil {
			return Config{}, err
		}
	}

	environ, err := o.environ()
	if err != nil {
		return Config{}, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad works like Load but panics on failure.
func MustLoad(opts ...LoadOption) Config {
	cfg, err := Load(opts...)
	if err != nil {
		panic(fmt.Sprintf("Failed to load required configuration: %v", err))
	}
	return cfg
}

func readYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadingFile, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s: %w", ErrParsingConfig, path, err)
	}
	return nil
}

func (o loadOptions) environ() (map[string]string, error) {
	environ := o.environment
	if environ == nil {
		environ = envMap(os.Environ())
	} else {
		environ = cloneMap(environ)
	}

	files := o.dotenv
	optional := false
	if len(files) == 0 {
		files = []string{defaultDotEnv}
		optional = true
	}

	for _, f := range files {
		vars, err := godotenv.Read(f)
		if err != nil {
			if optional && errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrReadingFile, err)
		}
		for k, v := range vars {
			if _, set := environ[k]; !set {
				environ[k] = v
			}
		}
	}
	return environ, nil
}

func envMap(pairs []string) map[string]string {
	m := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
