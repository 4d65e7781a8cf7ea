package grpcjwt

import (
	"errors"

	jwtmiddleware "github.com/contactbook/go-jwt-middleware"
)

// Option configures the JWTInterceptor.
type Option func(*JWTInterceptor) error

// WithTokenExtractor sets how the token is read from incoming metadata.
//
// Default: MetadataTokenExtractor
func WithTokenExtractor(extractor GRPCTokenExtractor) Option {
	return func(i *JWTInterceptor) error {
		if extractor == nil {
			return jwtmiddleware.ErrTokenExtractorNil
		}
		i.tokenExtractor = extractor
		return nil
	}
}

// WithCredentialsOptional lets calls without a token through with no claims.
func WithCredentialsOptional(value bool) Option {
	return func(i *JWTInterceptor) error {
		i.credentialsOptional = value
		return nil
	}
}

// WithExcludedMethods skips authentication for the listed full method names,
// such as "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods []string) Option {
	return func(i *JWTInterceptor) error {
		if len(methods) == 0 {
			return errors.New("excluded methods list cannot be empty")
		}
		methodSet := make(map[string]struct{}, len(methods))
		for _, m := range methods {
			methodSet[m] = struct{}{}
		}
		i.exclusionChecker = func(method string) bool {
			_, ok := methodSet[method]
			return ok
		}
		return nil
	}
}

// WithExclusionChecker sets a custom exclusion checker for gRPC methods.
func WithExclusionChecker(checker ExclusionChecker) Option {
	return func(i *JWTInterceptor) error {
		if checker == nil {
			return errors.New("exclusion checker cannot be nil")
		}
		i.exclusionChecker = checker
		return nil
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger jwtmiddleware.Logger) Option {
	return func(i *JWTInterceptor) error {
		if logger == nil {
			return jwtmiddleware.ErrLoggerNil
		}
		i.logger = logger
		return nil
	}
}

// WithMetrics records one observation per authenticated call.
func WithMetrics(metrics jwtmiddleware.Metrics) Option {
	return func(i *JWTInterceptor) error {
		if metrics == nil {
			return jwtmiddleware.ErrMetricsNil
		}
		i.metrics = metrics
		return nil
	}
}

// WithTracer starts one span per authenticated call.
func WithTracer(tracer jwtmiddleware.Tracer) Option {
	return func(i *JWTInterceptor) error {
		if tracer == nil {
			return jwtmiddleware.ErrTracerNil
		}
		i.tracer = tracer
		return nil
	}
}
