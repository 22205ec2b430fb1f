package md2docx

import (
	"time"

	"github.com/alnah/go-md2docx/internal/pipeline"
)

// Feature is a set of optional Markdown syntax features, combined with |.
type Feature = pipeline.Feature

// Markdown features.
const (
	FeatureTables        = pipeline.FeatureTables
	FeatureHardWraps     = pipeline.FeatureHardWraps
	FeatureStrikethrough = pipeline.FeatureStrikethrough
	FeatureAutolinks     = pipeline.FeatureAutolinks
	FeatureTaskLists     = pipeline.FeatureTaskLists
	FeatureFootnotes     = pipeline.FeatureFootnotes
	FeatureHighlighting  = pipeline.FeatureHighlighting
	FeatureHeadingIDs    = pipeline.FeatureHeadingIDs

	// DefaultFeatures enables tables and newline-to-<br> conversion.
	DefaultFeatures = pipeline.DefaultFeatures
)

// StyleOverrides holds optional document-wide DOCX formatting.
// Unrecognized keys are ignored.
type StyleOverrides = pipeline.StyleOverrides

// Style override keys.
const (
	StyleFontSize   = pipeline.StyleFontSize   // points, e.g. "11" or "10.5"
	StyleFontFamily = pipeline.StyleFontFamily // font name, e.g. "Calibri"
)

// BuildOptions tunes a single DOCX build.
type BuildOptions = pipeline.BuildOptions

// Rendered is the result of ToHTMLWithMetadata.
type Rendered struct {
	HTML     string         // HTML fragment
	Metadata map[string]any // front matter, empty when absent
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	features Feature
	timeout  time.Duration
}

// defaultTimeout bounds each conversion call.
const defaultTimeout = 30 * time.Second

// WithFeatures replaces the Markdown feature set (default DefaultFeatures).
func WithFeatures(f Feature) Option {
	return func(c *Converter) {
		c.cfg.features = f
	}
}

// WithTimeout sets the per-call conversion timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2docx: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}
