// Package assets provides style presets and templates for DOCX builds.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	Loader (interface)
//	    │
//	    ├── EmbeddedLoader    - loads from go:embed filesystem (built-in presets)
//	    ├── FilesystemLoader  - loads from custom directory on disk
//	    └── Resolver          - combines both with custom-first fallback
//
// EmbeddedLoader provides built-in presets (default, compact, large,
// technical) compiled into the binary. No templates are embedded, so a
// template name only resolves against a custom directory.
//
// FilesystemLoader allows users to provide custom assets from a directory,
// with path traversal protection and symlink resolution.
//
// Resolver is the loader used by the CLI and the service. It tries the
// custom FilesystemLoader first, falling back to EmbeddedLoader if the asset
// is not found. This enables overriding one preset while keeping the rest.
//
// # Directory Structure
//
//	{basePath}/
//	├── presets/
//	│   └── {name}.yaml          # style overrides (font_size, font_family)
//	└── templates/
//	    └── {name}.docx          # template document
//
// # Security
//
// Asset names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
