package api

import (
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure. Each kind has a fixed HTTP status,
// error code and user-facing message.
type Kind int

const (
	KindMethodNotAllowed Kind = iota + 1
	KindInvalidRequestShape
	KindMissingField
	KindInvalidField
	KindPayloadTooLarge
	KindRenderFailure
	KindBuildFailure
	KindStorageFailure
	KindInternal
)

type kindInfo struct {
	name    string
	status  int
	code    string
	message string
}

var kinds = map[Kind]kindInfo{
	KindMethodNotAllowed:    {"MethodNotAllowed", http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed. Use POST"},
	KindInvalidRequestShape: {"InvalidRequestShape", http.StatusBadRequest, "INVALID_JSON", "Invalid JSON in request body"},
	KindMissingField:        {"MissingField", http.StatusBadRequest, "MISSING_FIELD", "Validation error in field '%s'"},
	KindInvalidField:        {"InvalidField", http.StatusBadRequest, "INVALID_FIELD", "Validation error in field '%s'"},
	KindPayloadTooLarge:     {"PayloadTooLarge", http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "Content too large. Maximum: %dMB"},
	KindRenderFailure:       {"RenderFailure", http.StatusUnprocessableEntity, "MARKDOWN_CONVERSION_FAILED", "Failed to convert Markdown"},
	KindBuildFailure:        {"BuildFailure", http.StatusInternalServerError, "DOCX_GENERATION_FAILED", "Failed to generate DOCX document"},
	KindStorageFailure:      {"StorageFailure", http.StatusInternalServerError, "STORAGE_UPLOAD_FAILED", "Failed to upload file to storage"},
	KindInternal:            {"InternalUnhandled", http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error"},
}

func (k Kind) info() kindInfo {
	if info, ok := kinds[k]; ok {
		return info
	}
	return kinds[KindInternal]
}

func (k Kind) String() string { return k.info().name }

// Status returns the HTTP status code for k.
func (k Kind) Status() int { return k.info().status }

// Code returns the machine-readable error code for k.
func (k Kind) Code() string { return k.info().code }

// Stage names the pipeline step a failure came from.
type Stage string

const (
	StageValidate Stage = "validate"
	StageRender   Stage = "render"
	StageBuild    Stage = "build"
	StageStore    Stage = "store"
	StageInternal Stage = "internal"
)

// Failure is the error value every pipeline stage returns.
type Failure struct {
	Kind   Kind
	Stage  Stage
	Field  string // validation kinds only
	Reason string // validation kinds only
	Cause  error  // stage failures only

	limitMB int
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s failed at %s: %v", f.Kind, f.Stage, f.Cause)
	}
	if f.Field != "" {
		return fmt.Sprintf("%s failed at %s: %s: %s", f.Kind, f.Stage, f.Field, f.Reason)
	}
	return fmt.Sprintf("%s failed at %s", f.Kind, f.Stage)
}

func (f *Failure) Unwrap() error { return f.Cause }

// Message returns the fixed user-facing sentence for the failure.
func (f *Failure) Message() string {
	info := f.Kind.info()
	switch f.Kind {
	case KindMissingField, KindInvalidField:
		return fmt.Sprintf(info.message, f.Field)
	case KindPayloadTooLarge:
		return fmt.Sprintf(info.message, f.limitMB)
	default:
		return info.message
	}
}

// Details returns the diagnostic payload, or nil when the kind has none.
// The cause text never leaks into Message.
func (f *Failure) Details() map[string]any {
	switch {
	case f.Kind == KindInternal:
		return nil
	case f.Field != "":
		return map[string]any{"field": f.Field, "reason": f.Reason}
	case f.Cause != nil:
		return map[string]any{"error": f.Cause.Error()}
	default:
		return nil
	}
}

func validationFailure(kind Kind, field, reason string) *Failure {
	return &Failure{Kind: kind, Stage: StageValidate, Field: field, Reason: reason}
}

func stageFailure(kind Kind, stage Stage, cause error) *Failure {
	return &Failure{Kind: kind, Stage: stage, Cause: cause}
}

func tooLarge(limitMB int, size int64) *Failure {
	return &Failure{
		Kind:    KindPayloadTooLarge,
		Stage:   StageValidate,
		Field:   fieldContent,
		Reason:  fmt.Sprintf("%d bytes exceeds the %d byte limit", size, int64(limitMB)*bytesPerMB),
		limitMB: limitMB,
	}
}

func bodyTooLarge(limitMB int, bodyLimit int64) *Failure {
	return &Failure{
		Kind:    KindPayloadTooLarge,
		Stage:   StageValidate,
		Field:   fieldContent,
		Reason:  fmt.Sprintf("request body exceeds %d bytes", bodyLimit),
		limitMB: limitMB,
	}
}
