package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/frond-ui/frond/internal/errors"
)

const (
	// FileNameJSON is the JSON configuration file name.
	FileNameJSON = "frond.json"

	// FileNameYAML is the YAML configuration file name.
	FileNameYAML = "frond.yaml"

	// DefaultPort is the default preview server port.
	DefaultPort = 8420

	// DefaultHost is the default preview server host.
	DefaultHost = "localhost"
)

// Config represents the complete frond.json (or frond.yaml) project
// configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Version is the project version.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Tree is the path to the descriptor file, relative to the config.
	Tree string `json:"tree,omitempty" yaml:"tree,omitempty"`

	// State is an optional path to a JSON file of initial state values,
	// keyed by store path.
	State string `json:"state,omitempty" yaml:"state,omitempty"`

	// Serve configures the preview server.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty"`

	// Sources configures remote data sources by name.
	Sources map[string]SourceConfig `json:"sources,omitempty" yaml:"sources,omitempty"`

	// Cache configures the optional Redis read-through cache for remote
	// sources.
	Cache CacheConfig `json:"cache,omitempty" yaml:"cache,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServeConfig contains preview server settings.
type ServeConfig struct {
	// Port is the port to serve on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Title is the served document title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Styles are stylesheet URLs linked into the page.
	Styles []string `json:"styles,omitempty" yaml:"styles,omitempty"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// SourceConfig describes one remote data source.
type SourceConfig struct {
	// Type is the source type: "http" or "s3".
	Type string `json:"type" yaml:"type"`

	// URL is the base URL for http sources.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Bucket is the bucket name for s3 sources.
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`

	// Prefix is the key prefix for s3 sources.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Region is the AWS region for s3 sources.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// CacheConfig contains remote cache settings.
type CacheConfig struct {
	// Redis is the Redis address ("host:port"). Empty disables caching.
	Redis string `json:"redis,omitempty" yaml:"redis,omitempty"`

	// TTL is the cache entry lifetime (e.g. "5m").
	TTL string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// New returns a Config with defaults applied.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads the project configuration from dir, preferring frond.json
// over frond.yaml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{FileNameJSON, FileNameYAML} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E021").
		WithPath(dir).
		WithSuggestion("Run \"frond init\" to create a project, or pass --config")
}

// LoadFile reads the configuration at path, decoding by extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E021").WithPath(path).Wrap(err)
	}

	c := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return nil, errors.New("E020").WithPath(path).Wrap(err)
	}

	c.configPath = path
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Save writes the configuration back to where it was loaded from.
func (c *Config) Save() error {
	path := c.configPath
	if path == "" {
		path = FileNameJSON
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path as JSON.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the project directory.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return "."
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Title == "" {
		if c.Name != "" {
			c.Serve.Title = c.Name
		} else {
			c.Serve.Title = "Frond Preview"
		}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	for name, src := range c.Sources {
		switch src.Type {
		case "http":
			if src.URL == "" {
				return errors.New("E022").
					WithDetailf("Source %q has type http but no url", name)
			}
		case "s3":
			if src.Bucket == "" {
				return errors.New("E022").
					WithDetailf("Source %q has type s3 but no bucket", name)
			}
		default:
			return errors.New("E022").
				WithDetailf("Source %q has unknown type %q", name, src.Type).
				WithSuggestion("Use \"http\" or \"s3\"")
		}
	}
	if c.Cache.TTL != "" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return errors.New("E022").
				WithDetailf("Cache ttl %q is not a duration", c.Cache.TTL)
		}
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("E022").
			WithDetailf("Serve port %d is out of range", c.Serve.Port)
	}
	return nil
}

// CacheTTL returns the parsed cache TTL, zero when unset.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTL == "" {
		return 0
	}
	d, _ := time.ParseDuration(c.Cache.TTL)
	return d
}

// ServeAddress returns the host:port the preview server binds to.
func (c *Config) ServeAddress() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// TreePath returns the descriptor file path resolved against the project
// directory.
func (c *Config) TreePath() string {
	return c.resolve(c.Tree)
}

// StatePath returns the initial state file path resolved against the
// project directory, empty when unset.
func (c *Config) StatePath() string {
	if c.State == "" {
		return ""
	}
	return c.resolve(c.State)
}

func (c *Config) resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Dir(), path)
}

// Exists reports whether a project configuration exists in dir.
func Exists(dir string) bool {
	for _, name := range []string{FileNameJSON, FileNameYAML} {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up from startDir looking for a configuration file.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}
	for {
		if Exists(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E021").
				WithPath(startDir).
				WithDetail("No frond.json or frond.yaml found in this directory or any parent")
		}
		dir = parent
	}
}
