package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"

	"github.com/frond-ui/frond"
	"github.com/frond-ui/frond/internal/config"
	"github.com/frond-ui/frond/internal/errors"
	"github.com/frond-ui/frond/pkg/build"
	"github.com/frond-ui/frond/pkg/remote"
)

// loadConfig loads the project configuration from the given file, or by
// walking up from the working directory.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	root, err := config.FindProjectRoot(".")
	if err != nil {
		return nil, err
	}
	return config.Load(root)
}

// newSession assembles a session from the project configuration: initial
// state, remote sources (optionally wrapped in the Redis cache), and the
// built-in kind registry, then mounts the descriptor tree.
func newSession(cfg *config.Config, observer build.Observer) (*frond.Session, error) {
	initial, err := loadInitialState(cfg)
	if err != nil {
		return nil, err
	}

	sources, err := buildSources(cfg)
	if err != nil {
		return nil, err
	}

	sess := frond.NewSession(frond.Config{
		InitialState: initial,
		Sources:      sources,
		Observer:     observer,
	})

	if err := mountTree(sess, cfg); err != nil {
		sess.Close()
		return nil, err
	}
	return sess, nil
}

func loadInitialState(cfg *config.Config) (map[string]any, error) {
	path := cfg.StatePath()
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E021").WithPath(path).Wrap(err)
	}
	var initial map[string]any
	if err := json.Unmarshal(data, &initial); err != nil {
		return nil, errors.New("E020").WithPath(path).Wrap(err)
	}
	return initial, nil
}

func buildSources(cfg *config.Config) (map[string]remote.Source, error) {
	if len(cfg.Sources) == 0 {
		return nil, nil
	}

	var cache redis.UniversalClient
	if cfg.Cache.Redis != "" {
		cache = redis.NewClient(&redis.Options{Addr: cfg.Cache.Redis})
	}

	sources := make(map[string]remote.Source, len(cfg.Sources))
	for name, sc := range cfg.Sources {
		var src remote.Source
		switch sc.Type {
		case "http":
			src = remote.NewHTTPSource(sc.URL)
		case "s3":
			client := s3.New(s3.Options{Region: sc.Region})
			src = remote.NewS3Source(client, sc.Bucket, sc.Prefix)
		default:
			return nil, errors.New("E022").
				WithDetailf("Source %q has unknown type %q", name, sc.Type)
		}

		if cache != nil {
			var opts []remote.CacheOption
			if ttl := cfg.CacheTTL(); ttl > 0 {
				opts = append(opts, remote.WithTTL(ttl))
			}
			src = remote.NewCachedSource(src, cache, opts...)
		}
		sources[name] = src
	}
	return sources, nil
}

func mountTree(sess *frond.Session, cfg *config.Config) error {
	path := cfg.TreePath()
	if path == "" {
		return errors.New("E022").
			WithDetail("No descriptor tree configured").
			WithSuggestion("Set \"tree\" in frond.json")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.New("E021").WithPath(path).Wrap(err)
	}

	var root *frond.Node
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		root, err = sess.MountYAML(data)
	default:
		root, err = sess.MountJSON(data)
	}
	if root == nil {
		// Decode failure; nothing mounted.
		return err
	}
	// Build errors are isolated into the tree and rendered in place.
	return nil
}
