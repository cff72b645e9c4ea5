package remoteauth

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "remoteauth"

// TraceConfig configures the traced bridge decorator.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "remoteauth").
	TracerName string

	tracer trace.Tracer
}

// TraceOption configures the traced bridge decorator.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		if name != "" {
			c.TracerName = name
		}
	}
}

// NewTracedBridge wraps bridge so every interop round trip runs inside an
// OpenTelemetry span carrying the bridge method and, where applicable, the
// reported result status.
func NewTracedBridge[S State](bridge Bridge[S], opts ...TraceOption) Bridge[S] {
	cfg := TraceConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.tracer = otel.Tracer(cfg.TracerName)
	return &tracedBridge[S]{next: bridge, tracer: cfg.tracer}
}

type tracedBridge[S State] struct {
	next   Bridge[S]
	tracer trace.Tracer
}

func (b *tracedBridge[S]) Init(ctx context.Context, providerOptions any, logging LoggingOptions) error {
	ctx, span := b.start(ctx, "init")
	defer span.End()
	err := b.next.Init(ctx, providerOptions, logging)
	b.finish(span, err)
	return err
}

func (b *tracedBridge[S]) SignIn(ctx context.Context, operation Context[S]) (Result[S], error) {
	return b.operation(ctx, "signIn", func(ctx context.Context) (Result[S], error) {
		return b.next.SignIn(ctx, operation)
	})
}

func (b *tracedBridge[S]) CompleteSignIn(ctx context.Context, url string) (Result[S], error) {
	return b.operation(ctx, "completeSignIn", func(ctx context.Context) (Result[S], error) {
		return b.next.CompleteSignIn(ctx, url)
	})
}

func (b *tracedBridge[S]) SignOut(ctx context.Context, operation Context[S]) (Result[S], error) {
	return b.operation(ctx, "signOut", func(ctx context.Context) (Result[S], error) {
		return b.next.SignOut(ctx, operation)
	})
}

func (b *tracedBridge[S]) CompleteSignOut(ctx context.Context, url string) (Result[S], error) {
	return b.operation(ctx, "completeSignOut", func(ctx context.Context) (Result[S], error) {
		return b.next.CompleteSignOut(ctx, url)
	})
}

func (b *tracedBridge[S]) GetAccessToken(ctx context.Context, options *AccessTokenRequestOptions) (TokenResponse, error) {
	ctx, span := b.start(ctx, "getAccessToken")
	defer span.End()
	response, err := b.next.GetAccessToken(ctx, options)
	if err == nil {
		span.SetAttributes(attribute.String("remoteauth.token_status", string(response.Status)))
	}
	b.finish(span, err)
	return response, err
}

func (b *tracedBridge[S]) GetUser(ctx context.Context) (Account, error) {
	ctx, span := b.start(ctx, "getUser")
	defer span.End()
	account, err := b.next.GetUser(ctx)
	b.finish(span, err)
	return account, err
}

func (b *tracedBridge[S]) operation(ctx context.Context, method string, call func(context.Context) (Result[S], error)) (Result[S], error) {
	ctx, span := b.start(ctx, method)
	defer span.End()
	result, err := call(ctx)
	if err == nil {
		span.SetAttributes(attribute.String("remoteauth.status", string(result.Status)))
	}
	b.finish(span, err)
	return result, err
}

func (b *tracedBridge[S]) start(ctx context.Context, method string) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, "remoteauth.bridge."+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("remoteauth.method", method)),
	)
}

func (b *tracedBridge[S]) finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
