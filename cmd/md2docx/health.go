package main

import (
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2docx/internal/api"
)

// runHealth prints the health envelope the service would return for the
// loaded configuration.
func runHealth(args []string, env *Environment) error {
	flags, err := parseHealthFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	cfg, err := loadConfig(flags.common.config, nil, nil)
	if err != nil {
		return err
	}

	p := api.NewPipeline(nil, nil, nil, api.Options{
		Environment: cfg.Environment,
		Now:         env.Now,
	})
	fmt.Fprintf(env.Stdout, "%s\n", p.Health().Body)
	return nil
}
