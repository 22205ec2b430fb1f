package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/fileutil"
	"github.com/alnah/go-md2docx/internal/hints"
	"github.com/alnah/go-md2docx/internal/yamlutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput          = errors.New("no input specified")
	ErrReadMarkdown     = errors.New("failed to read markdown file")
	ErrReadTemplate     = errors.New("failed to read DOCX template")
	ErrWriteOutput      = errors.New("failed to write output file")
	ErrInvalidExtension = errors.New("file must have .md or .markdown extension")
	ErrUnknownFormat    = errors.New("unknown output format")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrUsage            = errors.New("invalid usage")
	ErrListen           = errors.New("failed to listen")
)

// File permission constants.
const filePermissions = 0o644 // rw-r--r--: owner read+write, others read

// runConvert converts one Markdown file to DOCX or HTML on disk. No
// artifact store is involved.
func runConvert(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseConvertFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}

	if len(positional) == 0 {
		return ErrNoInput
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: convert takes one input file, got %d", ErrUsage, len(positional))
	}
	inputPath := positional[0]
	if !looksLikeMarkdown(inputPath) {
		return fmt.Errorf("%w: %s", ErrInvalidExtension, inputPath)
	}

	format := strings.ToLower(flags.format)
	if format != "docx" && format != "html" {
		return fmt.Errorf("%w: %q (use docx or html)", ErrUnknownFormat, flags.format)
	}

	// #nosec G304 -- path comes from the command line
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadMarkdown, err)
	}

	conv := md2docx.NewConverter(converterOptions(flags)...)

	html, meta, err := renderMarkdown(ctx, conv, string(source), flags.frontMatter)
	if err != nil {
		return fmt.Errorf("converting %s: %w", inputPath, err)
	}
	if flags.frontMatter && len(meta) > 0 && !flags.common.quiet {
		out, err := yamlutil.Marshal(meta)
		if err != nil {
			return fmt.Errorf("printing front matter: %w", err)
		}
		fmt.Fprintf(env.Stdout, "%s", out)
	}

	output := []byte(html)
	if format == "docx" {
		opts, err := buildOptions(flags)
		if err != nil {
			return err
		}
		output, err = conv.Build(ctx, html, opts)
		if err != nil {
			return fmt.Errorf("building %s: %w%s", inputPath, err, buildHint(err))
		}
	}

	outputPath := resolveOutputPath(inputPath, flags.output, format)
	if err := fileutil.WriteFileAtomic(outputPath, output, filePermissions); err != nil {
		return fmt.Errorf("%w: %w%s", ErrWriteOutput, err, hints.ForOutputDirectory())
	}

	if !flags.common.quiet {
		fmt.Fprintf(env.Stderr, "wrote %s (%d bytes)\n", outputPath, len(output))
	}
	return nil
}

// converterOptions maps convert flags to converter options.
func converterOptions(flags *convertFlags) []md2docx.Option {
	features := md2docx.DefaultFeatures
	if flags.highlight {
		features |= md2docx.FeatureHighlighting
	}
	opts := []md2docx.Option{md2docx.WithFeatures(features)}
	if flags.timeout > 0 {
		opts = append(opts, md2docx.WithTimeout(flags.timeout))
	}
	return opts
}

func renderMarkdown(ctx context.Context, conv *md2docx.Converter, source string, frontMatter bool) (string, map[string]any, error) {
	if !frontMatter {
		html, err := conv.ToHTML(ctx, source)
		return html, nil, err
	}
	res, err := conv.ToHTMLWithMetadata(ctx, source)
	if err != nil {
		return "", nil, err
	}
	return res.HTML, res.Metadata, nil
}

// buildOptions loads the template and resolves style overrides.
func buildOptions(flags *convertFlags) (md2docx.BuildOptions, error) {
	var opts md2docx.BuildOptions
	r, err := newResolver(flags.assetsDir)
	if err != nil {
		return opts, err
	}
	if flags.template != "" {
		opts.Template, err = loadTemplate(r, flags.template)
		if err != nil {
			return opts, err
		}
	}
	opts.Styles, err = resolveStyles(r, flags.style, flags.fontSize, flags.fontFamily)
	if err != nil {
		return opts, err
	}
	return opts, nil
}

func buildHint(err error) string {
	switch {
	case errors.Is(err, md2docx.ErrTemplate):
		return hints.ForTemplate()
	case errors.Is(err, md2docx.ErrInvalidStyle):
		return hints.ForStyle()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	default:
		return ""
	}
}

// resolveOutputPath returns explicit when set, else input with the
// extension replaced by format.
func resolveOutputPath(input, explicit, format string) string {
	if explicit != "" {
		return explicit
	}
	ext := filepath.Ext(input)
	return strings.TrimSuffix(input, ext) + "." + format
}
