package api

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	md2docx "github.com/alnah/go-md2docx"
	"github.com/alnah/go-md2docx/internal/logging"
	"github.com/alnah/go-md2docx/internal/metrics"
	"github.com/alnah/go-md2docx/internal/storage"
)

// Renderer converts Markdown to HTML.
type Renderer interface {
	ToHTML(ctx context.Context, markdown string) (string, error)
}

// Builder converts HTML to DOCX bytes.
type Builder interface {
	Build(ctx context.Context, html string, opts md2docx.BuildOptions) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ Renderer = (*md2docx.Converter)(nil)
	_ Builder  = (*md2docx.Converter)(nil)
)

// Options configures a Pipeline.
type Options struct {
	MaxFileSizeMB int
	URLExpiry     time.Duration
	BuildOptions  md2docx.BuildOptions
	Environment   string
	Version       string
	Logger        *zap.Logger
	Metrics       metrics.Recorder
	Now           func() time.Time // defaults to time.Now
}

// DefaultVersion is reported by the health check when Options.Version is empty.
const DefaultVersion = "0.1.0"

// Pipeline validates a conversion request, renders it, and for docx output
// builds and stores the document. Each Handle call is independent.
type Pipeline struct {
	renderer Renderer
	builder  Builder
	store    storage.Store
	opts     Options
	logger   *zap.Logger
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewPipeline wires the stages together. The store is only used for docx
// output.
func NewPipeline(renderer Renderer, builder Builder, store storage.Store, opts Options) *Pipeline {
	p := &Pipeline{
		renderer: renderer,
		builder:  builder,
		store:    store,
		opts:     opts,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	if p.metrics == nil {
		p.metrics = metrics.Noop{}
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.opts.Version == "" {
		p.opts.Version = DefaultVersion
	}
	return p
}

// MaxBytes is the largest accepted content size in bytes.
func (p *Pipeline) MaxBytes() int64 {
	return int64(p.opts.MaxFileSizeMB) * bytesPerMB
}

// Handle runs one request through the pipeline and always returns an
// envelope. Panics are reported as InternalUnhandled.
func (p *Pipeline) Handle(ctx context.Context, req Request) (resp Response) {
	logger := logging.FromContext(ctx, p.logger)
	format := "unknown"

	defer func() {
		if r := recover(); r != nil {
			logger.Error("unhandled panic in pipeline", zap.Any("panic", r), zap.Stack("stack"))
			p.metrics.ObserveConversion(format, KindInternal.Code())
			resp = p.Reject(stageFailure(KindInternal, StageInternal, fmt.Errorf("panic: %v", r)))
		}
	}()

	creq, f := decodeRequest(req, p.opts.MaxFileSizeMB)
	if f != nil {
		logger.Info("request rejected",
			zap.String("method", req.Method),
			zap.String("kind", f.Kind.String()),
			zap.String("field", f.Field),
		)
		p.metrics.ObserveConversion(format, f.Kind.Code())
		return p.Reject(f)
	}
	format = string(creq.Format)
	logger.Info("processing request",
		zap.Int("content_bytes", len(creq.Content)),
		zap.String("output_format", format),
	)

	data, f := p.convert(ctx, logger, creq)
	if f != nil {
		logger.Error("conversion failed",
			zap.String("stage", string(f.Stage)),
			zap.String("kind", f.Kind.String()),
			zap.Error(f.Cause),
		)
		p.metrics.ObserveConversion(format, f.Kind.Code())
		return p.Reject(f)
	}

	p.metrics.ObserveConversion(format, "success")
	return successResponse(p.now(), data, messageConverted)
}

// Reject renders f as an error envelope.
func (p *Pipeline) Reject(f *Failure) Response {
	if f.Kind == KindPayloadTooLarge && f.limitMB == 0 {
		f.limitMB = p.opts.MaxFileSizeMB
	}
	return errorResponse(p.now(), f)
}

// Health reports that the service is running.
func (p *Pipeline) Health() Response {
	return successResponse(p.now(), HealthStatus{
		Status:      "healthy",
		Version:     p.opts.Version,
		Environment: p.opts.Environment,
	}, messageHealthy)
}

// convert runs render and, for docx, build and store.
func (p *Pipeline) convert(ctx context.Context, logger *zap.Logger, creq *ConvertRequest) (any, *Failure) {
	html, f := p.render(ctx, creq.Content)
	if f != nil {
		return nil, f
	}
	logger.Debug("markdown rendered", zap.Int("html_bytes", len(html)))

	if creq.Format == FormatHTML {
		return HTMLResult{
			HTML:         html,
			OutputFormat: FormatHTML,
			SizeBytes:    len(html),
		}, nil
	}

	doc, f := p.build(ctx, html)
	if f != nil {
		return nil, f
	}
	logger.Debug("document built", zap.Int("docx_bytes", len(doc)))

	url, f := p.upload(ctx, doc)
	if f != nil {
		return nil, f
	}
	logger.Info("artifact stored", zap.Int("size_bytes", len(doc)))

	return DOCXResult{
		DownloadURL:  url,
		OutputFormat: FormatDOCX,
		SizeBytes:    len(doc),
		ExpiresIn:    int(p.opts.URLExpiry / time.Second),
	}, nil
}

func (p *Pipeline) render(ctx context.Context, content string) (string, *Failure) {
	defer p.timeStage(StageRender)()

	html, err := p.renderer.ToHTML(ctx, content)
	if err != nil {
		return "", stageFailure(KindRenderFailure, StageRender, err)
	}
	return html, nil
}

func (p *Pipeline) build(ctx context.Context, html string) ([]byte, *Failure) {
	defer p.timeStage(StageBuild)()

	doc, err := p.builder.Build(ctx, html, p.opts.BuildOptions)
	if err != nil {
		return nil, stageFailure(KindBuildFailure, StageBuild, err)
	}
	return doc, nil
}

func (p *Pipeline) upload(ctx context.Context, doc []byte) (string, *Failure) {
	defer p.timeStage(StageStore)()

	if p.store == nil {
		return "", stageFailure(KindStorageFailure, StageStore, fmt.Errorf("%w: no store configured", storage.ErrStorage))
	}
	url, err := p.store.Put(ctx, doc, string(FormatDOCX), p.opts.URLExpiry)
	if err != nil {
		return "", stageFailure(KindStorageFailure, StageStore, err)
	}
	p.metrics.ObserveArtifact(string(FormatDOCX), len(doc))
	return url, nil
}

func (p *Pipeline) timeStage(stage Stage) func() {
	start := time.Now()
	return func() {
		p.metrics.ObserveStage(string(stage), time.Since(start))
	}
}
