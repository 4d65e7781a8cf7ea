package grpcjwt

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	jwtmiddleware "github.com/contactbook/go-jwt-middleware"
	"github.com/contactbook/go-jwt-middleware/core"
)

// Status messages. Server-side failures share one message.
const (
	missingTokenMessage = "JWT is missing"
	invalidTokenMessage = "JWT is invalid"
	serverErrorMessage  = "something went wrong while checking the JWT"
)

// JWTInterceptor provides JWT authentication for gRPC servers.
type JWTInterceptor struct {
	core             *core.Core
	tokenExtractor   GRPCTokenExtractor
	exclusionChecker ExclusionChecker
	logger           jwtmiddleware.Logger
	metrics          jwtmiddleware.Metrics
	tracer           jwtmiddleware.Tracer

	credentialsOptional bool
}

// ExclusionChecker reports whether a full method name skips authentication.
type ExclusionChecker func(fullMethod string) bool

// New creates a new JWTInterceptor that validates tokens with validateToken.
//
// Example:
//
//	interceptor, err := grpcjwt.New(v.ValidateToken)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	server := grpc.NewServer(
//	    grpc.UnaryInterceptor(interceptor.UnaryServerInterceptor()),
//	    grpc.StreamInterceptor(interceptor.StreamServerInterceptor()),
//	)
func New(validateToken jwtmiddleware.ValidateToken, opts ...Option) (*JWTInterceptor, error) {
	if validateToken == nil {
		return nil, jwtmiddleware.ErrValidateTokenNil
	}

	i := &JWTInterceptor{
		tokenExtractor: MetadataTokenExtractor,
		metrics:        jwtmiddleware.NoopMetrics{},
		tracer:         jwtmiddleware.NoopTracer{},
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	coreOpts := []core.Option{
		core.WithValidator(validatorFunc(validateToken)),
		core.WithCredentialsOptional(i.credentialsOptional),
	}
	if i.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(i.logger))
	}

	c, err := core.New(coreOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}
	i.core = c

	return i, nil
}

type validatorFunc jwtmiddleware.ValidateToken

func (f validatorFunc) ValidateToken(ctx context.Context, token string) (any, error) {
	return f(ctx, token)
}

// StatusFromError maps a validation error to a gRPC status. Missing and
// invalid tokens become codes.Unauthenticated; everything else becomes
// codes.Internal with a fixed message.
func StatusFromError(err error) *status.Status {
	switch {
	case errors.Is(err, core.ErrJWTMissing):
		return status.New(codes.Unauthenticated, missingTokenMessage)
	case errors.Is(err, core.ErrJWTInvalid), errors.Is(err, core.ErrKeyNotFound):
		return status.New(codes.Unauthenticated, invalidTokenMessage)
	default:
		return status.New(codes.Internal, serverErrorMessage)
	}
}

// authenticate returns ctx carrying the validated claims, or ctx unchanged
// when the method is excluded or credentials are optional and absent.
func (i *JWTInterceptor) authenticate(ctx context.Context, method string) (context.Context, error) {
	if i.exclusionChecker != nil && i.exclusionChecker(method) {
		if i.logger != nil {
			i.logger.Debug("skipping JWT validation for excluded method", "method", method)
		}
		return ctx, nil
	}

	spanCtx, span := i.tracer.StartSpan(ctx, jwtmiddleware.CheckJWTSpanName)
	start := time.Now()

	claims, err := i.checkToken(spanCtx)

	outcome := jwtmiddleware.Outcome(claims, err)
	i.metrics.ObserveAuth(outcome, time.Since(start))
	span.SetTag("auth.outcome", outcome)
	span.SetTag("rpc.method", method)
	if err != nil {
		span.RecordError(err)
	}
	span.Finish()

	if err != nil {
		if i.logger != nil {
			i.logger.Warn("JWT validation failed", "method", method, "error", err)
		}
		return nil, StatusFromError(err).Err()
	}
	if claims == nil {
		return ctx, nil
	}
	return core.SetClaims(ctx, claims), nil
}

func (i *JWTInterceptor) checkToken(ctx context.Context) (any, error) {
	token, err := i.tokenExtractor(ctx)
	if err != nil {
		return nil, core.NewValidationError(core.ErrorCodeTokenMissing, "error extracting token", err)
	}

	claims, err := i.core.CheckToken(ctx, token)
	if err != nil {
		var validationErr *core.ValidationError
		if !errors.As(err, &validationErr) {
			return nil, core.NewValidationError(core.ErrorCodeTokenInvalid, "token is invalid", err)
		}
		return nil, err
	}
	return claims, nil
}

// UnaryServerInterceptor returns a gRPC unary server interceptor for JWT authentication.
func (i *JWTInterceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		authCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(authCtx, req)
	}
}

// StreamServerInterceptor returns a gRPC stream server interceptor for JWT authentication.
func (i *JWTInterceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		authCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedServerStream{ServerStream: ss, ctx: authCtx})
	}
}

// wrappedServerStream wraps a grpc.ServerStream to override the context.
type wrappedServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

// Context returns the wrapped context.
func (w *wrappedServerStream) Context() context.Context {
	return w.ctx
}
