package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ocrapi/internal/envelope"
	"ocrapi/internal/logging"
	"ocrapi/internal/model"
	"ocrapi/internal/recognition"
	"ocrapi/internal/repository"
)

const auditTimeout = 2 * time.Second

var ErrNilEngine = errors.New("recognition engine is nil")

// RecognitionService dispatches decoded envelopes to the recognition engine.
type RecognitionService interface {
	// Recognize runs the engine on env. Failures are always *recognition.Error.
	// The returned map belongs to the caller.
	Recognize(ctx context.Context, env envelope.Envelope) (recognition.Fields, error)
}

// Options configures a RecognitionService. Every field is optional.
type Options struct {
	// Timeout bounds one engine call. Zero means no bound.
	Timeout time.Duration
	// Audit stores a metadata row per call when set.
	Audit   repository.RecognitionRepository
	Metrics *Metrics
	Logger  *slog.Logger
	Tracer  trace.Tracer
}

// recognitionService holds only collaborators that are safe for concurrent use.
// Per-request values stay on the call stack.
type recognitionService struct {
	engine  recognition.Engine
	timeout time.Duration
	audit   repository.RecognitionRepository
	metrics *Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewRecognitionService constructs a new RecognitionService.
func NewRecognitionService(engine recognition.Engine, opts Options) (RecognitionService, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("ocrapi/service")
	}
	return &recognitionService{
		engine:  engine,
		timeout: opts.Timeout,
		audit:   opts.Audit,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		tracer:  opts.Tracer,
	}, nil
}

func (s *recognitionService) Recognize(ctx context.Context, env envelope.Envelope) (recognition.Fields, error) {
	ctx, span := s.tracer.Start(ctx, "recognition.Recognize", trace.WithAttributes(
		attribute.String("ocr.document_type", env.DocumentType),
		attribute.String("ocr.file_extension", env.FileExtension),
		attribute.Int("ocr.size", len(env.FileContent)),
	))
	defer span.End()

	start := time.Now()
	fields, err := s.dispatch(ctx, env)
	elapsed := time.Since(start)

	outcome := model.OutcomeSuccess
	if err != nil {
		outcome = model.OutcomeFailure
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = model.OutcomeTimeout
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(attribute.String("ocr.outcome", outcome), attribute.Int("ocr.field_count", len(fields)))

	s.metrics.observe(env.DocumentType, outcome, elapsed)
	s.record(ctx, env, outcome, len(fields), elapsed)

	return fields, err
}

type result struct {
	fields recognition.Fields
	err    error
}

// dispatch calls the engine under the configured timeout. The engine runs in its own
// goroutine so an engine that ignores ctx cannot hold the request past the deadline.
func (s *recognitionService) dispatch(ctx context.Context, env envelope.Envelope) (recognition.Fields, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		// A panicking decoder must fail this request only, not the process.
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("recognition_engine_panic",
					"request_id", RequestIDFrom(ctx),
					"panic", fmt.Sprint(r),
					"stack", string(debug.Stack()),
				)
				done <- result{err: recognition.Errorf("engine panic: %v", r)}
			}
		}()
		fields, err := s.engine.Recognize(ctx, env.FileContent, env.FileExtension, env.DocumentType)
		done <- result{fields: fields, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}

	if res.err != nil {
		switch {
		case errors.Is(res.err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, &recognition.Error{Detail: "recognition timed out", Err: context.DeadlineExceeded}
		case errors.Is(res.err, context.Canceled):
			return nil, &recognition.Error{Detail: "recognition cancelled", Err: res.err}
		default:
			return nil, recognition.AsError(res.err)
		}
	}

	// Copy so a map retained by the engine is never shared across requests.
	out := make(recognition.Fields, len(res.fields))
	for k, v := range res.fields {
		out[k] = v
	}
	return out, nil
}

// record writes the audit row. Failures are logged and never change the response.
func (s *recognitionService) record(ctx context.Context, env envelope.Envelope, outcome string, fieldCount int, elapsed time.Duration) {
	if s.audit == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()

	rec := &model.Recognition{
		ID:            uuid.NewString(),
		RequestID:     RequestIDFrom(ctx),
		DocumentType:  env.DocumentType,
		FileExtension: env.FileExtension,
		Size:          int64(len(env.FileContent)),
		Outcome:       outcome,
		FieldCount:    fieldCount,
		DurationMs:    elapsed.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.audit.Create(ctx, rec); err != nil {
		s.logger.Warn("recognition_audit_failed",
			"request_id", rec.RequestID,
			"error", err.Error(),
		)
	}
}
