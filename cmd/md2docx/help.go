package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve      Run the HTTP conversion service")
	fmt.Fprintln(w, "  convert    Convert a markdown file to DOCX or HTML")
	fmt.Fprintln(w, "  health     Print the service health envelope")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'md2docx help <command>' for details on a specific command.")
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run the HTTP conversion service.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  POST /convert             Convert {\"content\", \"output_format\"}")
	fmt.Fprintln(w, "  GET  /health              Health check")
	fmt.Fprintln(w, "  GET  /metrics             Prometheus metrics")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -c, --config <path>       Config file (default: md2docx.yaml if present)")
	fmt.Fprintln(w, "  -l, --listen <addr>       Listen address (env LISTEN_ADDR, default :8080)")
	fmt.Fprintln(w, "      --log-level <s>       debug, info, warn, error (env LOG_LEVEL)")
	fmt.Fprintln(w, "      --log-format <s>      json, console (env LOG_FORMAT)")
	fmt.Fprintln(w, "      --check-storage       Probe the artifact store before serving")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  STORAGE_BACKEND           local or s3 (default local)")
	fmt.Fprintln(w, "  LOCAL_STORAGE_DIR         Directory for the local backend")
	fmt.Fprintln(w, "  BUCKET_NAME, AWS_REGION   S3 bucket and region")
	fmt.Fprintln(w, "  S3_ENDPOINT               Custom S3 endpoint (MinIO, localstack)")
	fmt.Fprintln(w, "  S3_ACCESS_KEY_ID          Static credentials (optional)")
	fmt.Fprintln(w, "  S3_SECRET_ACCESS_KEY")
	fmt.Fprintln(w, "  URL_EXPIRY                Download link lifetime in seconds (60-3600)")
	fmt.Fprintln(w, "  MAX_FILE_SIZE_MB          Largest accepted content (default 10)")
	fmt.Fprintln(w, "  ENVIRONMENT               Reported by /health")
	fmt.Fprintln(w, "  DOCX_TEMPLATE             Template .docx for every build")
	fmt.Fprintln(w, "  DOCX_STYLE                Style preset name")
	fmt.Fprintln(w, "  DOCX_FONT_SIZE            Body font size in points (overrides the preset)")
	fmt.Fprintln(w, "  ASSETS_DIR                Custom presets/ and templates/ directory")
	fmt.Fprintln(w, "  MARKDOWN_HIGHLIGHT        Syntax-highlight fenced code (true/false)")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx convert <input.md> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a markdown file locally. Nothing is uploaded.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: input with .docx or .html)")
	fmt.Fprintln(w, "  -f, --format <s>          docx or html (default docx)")
	fmt.Fprintln(w, "      --template <ref>      DOCX template file or name in the assets dir")
	fmt.Fprintln(w, "  -s, --style <name>        Style preset (compact, default, large, technical)")
	fmt.Fprintln(w, "      --assets-dir <dir>    Custom presets/ and templates/ directory")
	fmt.Fprintln(w, "      --font-size <pt>      Body font size in points")
	fmt.Fprintln(w, "      --font-family <s>     Body font family")
	fmt.Fprintln(w, "      --front-matter        Strip YAML front matter and print it")
	fmt.Fprintln(w, "      --highlight           Syntax-highlight fenced code")
	fmt.Fprintln(w, "  -t, --timeout <d>         Conversion timeout (default 30s)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show detailed output")
}

// printHealthUsage prints usage for the health command.
func printHealthUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: md2docx health [--config <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print the health envelope for the loaded configuration.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "serve":
		printServeUsage(env.Stdout)
	case "convert":
		printConvertUsage(env.Stdout)
	case "health":
		printHealthUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: md2docx version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: md2docx help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
