package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/volunteerhq/volunteer-api/internal/platform/logger"
	"github.com/volunteerhq/volunteer-api/internal/redact"
	"github.com/volunteerhq/volunteer-api/internal/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultMaxBodyBytes = 1 << 20
	tracerName          = "github.com/volunteerhq/volunteer-api/internal/action"
)

// Definition describes one endpoint: the request it accepts and the response
// it produces. Req and Resp are struct types carrying json and validate tags.
type Definition[Req, Resp any] struct {
	// Name identifies the endpoint in logs and traces.
	Name string
	// StrictRequest rejects request keys that Req does not declare. Unknown
	// keys are ignored otherwise. Responses are always strict.
	StrictRequest bool
	// CheckRequest refines a decoded request beyond what tags express.
	CheckRequest func(*Req) error
	// CheckResponse refines a handler's response beyond what tags express.
	CheckResponse func(*Resp) error
	// CatchAll names the request field that receives chi's "*" wildcard.
	CatchAll string
}

// Handler is the business logic behind a Definition.
type Handler[Req, Resp any] func(ctx context.Context, req Req, actx *Context) (Resp, error)

// Dispatcher runs handlers. It holds no per-request state and is safe for
// concurrent use.
type Dispatcher struct {
	identity         IdentityResolver
	logger           *slog.Logger
	origin           string
	inputErrorStatus int
	maxBodyBytes     int64
	tracer           trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger used when the request context carries none.
// Tests pass logger.Discard() to keep failures out of their output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithOrigin fixes the origin reported in Context instead of deriving it
// from each request.
func WithOrigin(origin string) Option {
	return func(d *Dispatcher) { d.origin = origin }
}

// WithInputErrorStatus sets the status written when the request payload is
// malformed or fails validation.
func WithInputErrorStatus(status int) Option {
	return func(d *Dispatcher) {
		if status >= 400 && status <= 599 {
			d.inputErrorStatus = status
		}
	}
}

// WithMaxBodyBytes caps the size of request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBodyBytes = n
		}
	}
}

// WithTracer replaces the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(d *Dispatcher) {
		if t != nil {
			d.tracer = t
		}
	}
}

// NewDispatcher builds a Dispatcher resolving callers through identity. A
// nil identity resolves everyone as anonymous.
func NewDispatcher(identity IdentityResolver, opts ...Option) *Dispatcher {
	if identity == nil {
		identity = Anonymous
	}
	d := &Dispatcher{
		identity:         identity,
		logger:           slog.Default(),
		inputErrorStatus: http.StatusInternalServerError,
		maxBodyBytes:     defaultMaxBodyBytes,
		tracer:           otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute returns an http.HandlerFunc serving def through h. Route
// parameters are read from chi's routing context.
func Execute[Req, Resp any](d *Dispatcher, def Definition[Req, Resp], h Handler[Req, Resp]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		Run(r.Context(), d, def, h, r, ChiParams(r, def.CatchAll)).Write(w)
	}
}

// Run dispatches r to h and returns the response to write. It never fails:
// every error is folded into the returned Result.
func Run[Req, Resp any](
	ctx context.Context,
	d *Dispatcher,
	def Definition[Req, Resp],
	h Handler[Req, Resp],
	r *http.Request,
	params RouteParams,
) Result {
	ctx, span := d.tracer.Start(ctx, "action "+def.Name,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("action.name", def.Name),
			attribute.String("http.request.method", r.Method),
		))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, d.logger).With(slog.String("action", def.Name))

	resp, actx, err := dispatch(ctx, d, def, h, r, params, log)
	if err != nil {
		status := d.StatusFor(err)
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		span.RecordError(err)
		span.SetStatus(codes.Error, http.StatusText(status))
		return d.failure(ctx, log, status, err)
	}

	span.SetAttributes(attribute.Int("http.response.status_code", http.StatusOK))
	return Result{
		Status: http.StatusOK,
		Body:   resp,
		Header: actx.ResponseHeaders,
	}
}

func dispatch[Req, Resp any](
	ctx context.Context,
	d *Dispatcher,
	def Definition[Req, Resp],
	h Handler[Req, Resp],
	r *http.Request,
	params RouteParams,
	log *slog.Logger,
) (Resp, *Context, error) {
	var zero Resp

	payload, err := distill(r, d.maxBodyBytes, log)
	if err != nil {
		return zero, nil, err
	}
	params.mergeInto(payload)

	req, err := schema.Decode[Req](payload, schema.DecodeOptions{
		Strict: def.StrictRequest,
		Scope:  schema.ScopeRequest,
	})
	if err != nil {
		return zero, nil, err
	}
	if def.CheckRequest != nil {
		if err := def.CheckRequest(&req); err != nil {
			return zero, nil, schema.WithScope(err, schema.ScopeRequest)
		}
	}

	user, err := d.identity.ResolveIdentity(ctx, r)
	if err != nil {
		return zero, nil, fmt.Errorf("failed to resolve identity: %w", err)
	}

	actx := &Context{
		IP:              clientIP(r),
		Origin:          requestOrigin(r, d.origin),
		RequestHeaders:  r.Header.Clone(),
		ResponseHeaders: http.Header{},
		User:            user,
		RequestID:       requestID(ctx),
	}
	if actx.RequestHeaders == nil {
		actx.RequestHeaders = http.Header{}
	}

	resp, err := h(ctx, req, actx)
	if err != nil {
		return zero, nil, err
	}

	validated, err := schema.Roundtrip(resp, schema.DecodeOptions{
		Strict: true,
		Scope:  schema.ScopeResponse,
	})
	if err != nil {
		return zero, nil, err
	}
	if def.CheckResponse != nil {
		if err := def.CheckResponse(&validated); err != nil {
			return zero, nil, responseIssue(err)
		}
	}
	return validated, actx, nil
}

// responseIssue scopes a refinement failure to the response. Plain errors
// become a single unpathed issue so they read like any other response
// violation.
func responseIssue(err error) error {
	if schema.IsValidationError(err) || errors.Is(err, ErrNoAccess) {
		return schema.WithScope(err, schema.ScopeResponse)
	}
	return schema.WithScope(schema.Issuef("", "%s", err), schema.ScopeResponse)
}

func (d *Dispatcher) failure(ctx context.Context, log *slog.Logger, status int, err error) Result {
	switch {
	case status == http.StatusForbidden:
		log.DebugContext(ctx, "access denied", slog.String("error", redact.Error(err)))
		return Result{Status: status, Body: Failure{Success: false}}
	case isInputError(err):
		log.WarnContext(ctx, "rejected request input",
			slog.Int("status_code", status),
			slog.String("error", redact.Error(err)))
	default:
		log.ErrorContext(ctx, "action failed",
			slog.Int("status_code", status),
			slog.String("error", redact.Error(err)))
	}
	return Result{Status: status, Body: Failure{Success: false, Error: err.Error()}}
}

func requestID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return logger.RequestID(ctx)
}
