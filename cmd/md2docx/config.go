package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2docx/internal/config"
	"github.com/alnah/go-md2docx/internal/hints"
)

// loadConfig builds the service config from defaults, the optional config
// file, environment variables and any bound flags, then validates it.
func loadConfig(path string, fs *flag.FlagSet, bindings map[string]string) (*config.Config, error) {
	v := config.New()

	if _, err := config.ReadFile(v, path); err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(searchedConfigPaths()))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if fs != nil {
		for key, name := range bindings {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding --%s: %w", name, err)
				}
			}
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func searchedConfigPaths() []string {
	paths := []string{"md2docx.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "md2docx", "md2docx.yaml"))
	}
	return paths
}
