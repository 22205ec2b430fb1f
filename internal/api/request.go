package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	fieldContent      = "content"
	fieldOutputFormat = "output_format"

	bytesPerMB = 1024 * 1024
)

// Format is a requested output kind.
type Format string

const (
	FormatDOCX Format = "docx"
	FormatHTML Format = "html"
)

// DefaultFormat applies when output_format is absent or null.
const DefaultFormat = FormatDOCX

// requestSchema accepts any object whose known fields are strings or null.
const requestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"content": {"type": ["string", "null"]},
		"output_format": {"type": ["string", "null"]}
	}
}`

var errTrailingData = errors.New("unexpected data after JSON value")

var compiledRequestSchema = jsonschema.MustCompileString("inmemory://convert-request", requestSchema)

// Request is a transport-neutral conversion invocation.
type Request struct {
	Method string
	Body   []byte
}

// ConvertRequest is the validated request body.
type ConvertRequest struct {
	Content string
	Format  Format
}

// decodeRequest checks method and shape, then field contents, in that
// order. The first failure wins.
func decodeRequest(req Request, maxMB int) (*ConvertRequest, *Failure) {
	if req.Method != http.MethodPost {
		return nil, &Failure{Kind: KindMethodNotAllowed, Stage: StageValidate}
	}

	body := bytes.TrimSpace(req.Body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	doc, err := decodeJSON(body)
	if err != nil {
		return nil, stageFailure(KindInvalidRequestShape, StageValidate, err)
	}
	if err := compiledRequestSchema.Validate(doc); err != nil {
		return nil, stageFailure(KindInvalidRequestShape, StageValidate, err)
	}

	fields, _ := doc.(map[string]any)
	content, _ := fields[fieldContent].(string)
	if content == "" {
		return nil, validationFailure(KindMissingField, fieldContent, "Field is required")
	}

	format := DefaultFormat
	if raw, ok := fields[fieldOutputFormat].(string); ok {
		format = Format(strings.ToLower(raw))
	}
	if format != FormatDOCX && format != FormatHTML {
		return nil, validationFailure(KindInvalidField, fieldOutputFormat, "Invalid output format. Use: 'docx' or 'html'")
	}

	if size := int64(len(content)); size > int64(maxMB)*bytesPerMB {
		return nil, tooLarge(maxMB, size)
	}

	return &ConvertRequest{Content: content, Format: format}, nil
}

// decodeJSON decodes exactly one JSON value. Numbers stay json.Number so
// the schema sees them unchanged.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := dec.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}
	return doc, nil
}
