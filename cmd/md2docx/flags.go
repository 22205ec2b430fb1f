package main

import (
	"os"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-md2docx/internal/config"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// serveFlags holds flags for the serve command. Empty values fall back to
// the environment and config file.
type serveFlags struct {
	common    commonFlags
	listen    string
	logLevel  string
	logFormat string

	checkStorage bool
}

// convertFlags holds flags for the convert command.
type convertFlags struct {
	common      commonFlags
	output      string
	format      string
	template    string
	style       string
	assetsDir   string
	fontSize    string
	fontFamily  string
	frontMatter bool
	highlight   bool
	timeout     time.Duration
}

// healthFlags holds flags for the health command.
type healthFlags struct {
	common commonFlags
}

// serveBindings maps config keys to the serve flags that override them.
var serveBindings = map[string]string{
	config.KeyListenAddr: "listen",
	config.KeyLogLevel:   "log-level",
	config.KeyLogFormat:  "log-format",
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show detailed output")
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string) (*serveFlags, *flag.FlagSet, error) {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	f := &serveFlags{}

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.listen, "listen", "l", "", "listen address (default :8080)")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: json, console")
	fs.BoolVar(&f.checkStorage, "check-storage", false, "write and delete a probe artifact before serving")

	fs.Usage = func() { printServeUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs, nil
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	f := &convertFlags{}

	addCommonFlags(fs, &f.common)
	fs.StringVarP(&f.output, "output", "o", "", "output file (default: input with new extension)")
	fs.StringVarP(&f.format, "format", "f", "docx", "output format: docx, html")
	fs.StringVar(&f.template, "template", "", "DOCX template file or template name")
	fs.StringVarP(&f.style, "style", "s", "", "style preset name")
	fs.StringVar(&f.assetsDir, "assets-dir", "", "directory of custom presets and templates")
	fs.StringVar(&f.fontSize, "font-size", "", "body font size in points")
	fs.StringVar(&f.fontFamily, "font-family", "", "body font family")
	fs.BoolVar(&f.frontMatter, "front-matter", false, "strip YAML front matter and print it")
	fs.BoolVar(&f.highlight, "highlight", false, "syntax-highlight fenced code")
	fs.DurationVarP(&f.timeout, "timeout", "t", 0, "conversion timeout (e.g., 30s, 2m)")

	fs.Usage = func() { printConvertUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseHealthFlags parses health command flags.
func parseHealthFlags(args []string) (*healthFlags, error) {
	fs := flag.NewFlagSet("health", flag.ContinueOnError)
	f := &healthFlags{}
	addCommonFlags(fs, &f.common)
	fs.Usage = func() { printHealthUsage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}
