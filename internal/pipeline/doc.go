// Package pipeline implements the Markdown-to-DOCX conversion stages.
//
// The stages are independent and stateless:
//   - Markdown preprocessing (BOM removal, line ending normalization)
//   - Front matter extraction (YAML block at the top of the document)
//   - Markdown to HTML conversion via Goldmark
//   - HTML to DOCX conversion: HTML is parsed into a small block model
//     and written with go-docx, then style overrides are applied
//
// Storage of the produced document is handled separately by the storage
// package. This keeps the pipeline free of I/O beyond in-memory buffers.
package pipeline
