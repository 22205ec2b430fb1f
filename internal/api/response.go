package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"
)

// Response is a transport-neutral reply: status, headers and a JSON body.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

// HTMLResult is the data payload for html conversions.
type HTMLResult struct {
	HTML         string `json:"html"`
	OutputFormat Format `json:"output_format"`
	SizeBytes    int    `json:"size_bytes"`
}

// DOCXResult is the data payload for docx conversions.
type DOCXResult struct {
	DownloadURL  string `json:"download_url"`
	OutputFormat Format `json:"output_format"`
	SizeBytes    int    `json:"size_bytes"`
	ExpiresIn    int    `json:"expires_in"`
}

// SuccessEnvelope wraps every successful reply.
type SuccessEnvelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message,omitempty"`
}

// ErrorEnvelope wraps every failed reply.
type ErrorEnvelope struct {
	Success   bool           `json:"success"`
	Error     string         `json:"error"`
	Timestamp string         `json:"timestamp"`
	ErrorCode string         `json:"error_code,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

const (
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
	timestampLayout   = "2006-01-02T15:04:05.000000Z07:00"
	messageConverted  = "Conversion completed successfully"
	messageHealthy    = "Service is running"
	fallbackErrorBody = `{"success":false,"error":"Internal server error","error_code":"INTERNAL_ERROR"}`
)

// StandardHeaders returns the headers attached to every envelope.
func StandardHeaders() map[string]string {
	return map[string]string{
		headerContentType:              contentTypeJSON,
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "POST, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type",
	}
}

func timestamp(now time.Time) string {
	return now.UTC().Format(timestampLayout)
}

func successResponse(now time.Time, data any, message string) Response {
	return jsonResponse(http.StatusOK, SuccessEnvelope{
		Success:   true,
		Data:      data,
		Timestamp: timestamp(now),
		Message:   message,
	})
}

func errorResponse(now time.Time, f *Failure) Response {
	return jsonResponse(f.Kind.Status(), ErrorEnvelope{
		Success:   false,
		Error:     f.Message(),
		Timestamp: timestamp(now),
		ErrorCode: f.Kind.Code(),
		Details:   f.Details(),
	})
}

func jsonResponse(status int, envelope any) Response {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(envelope); err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    StandardHeaders(),
			Body:       []byte(fallbackErrorBody),
		}
	}
	return Response{
		StatusCode: status,
		Headers:    StandardHeaders(),
		Body:       bytes.TrimRight(buf.Bytes(), "\n"),
	}
}
