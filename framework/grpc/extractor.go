package grpcjwt

import (
	"context"

	"google.golang.org/grpc/metadata"

	jwtmiddleware "github.com/contactbook/go-jwt-middleware"
)

// GRPCTokenExtractor pulls the raw token out of incoming call metadata. Like
// jwtmiddleware.TokenExtractor it returns "" and no error when there is none.
type GRPCTokenExtractor func(ctx context.Context) (string, error)

// MetadataTokenExtractor reads a bearer token from the "authorization"
// metadata key. It is the default extractor.
func MetadataTokenExtractor(ctx context.Context) (string, error) {
	return jwtmiddleware.ParseBearer(firstValue(ctx, "authorization"))
}

// MetadataFieldTokenExtractor reads the raw token, without a scheme, from
// field.
func MetadataFieldTokenExtractor(field string) GRPCTokenExtractor {
	return func(ctx context.Context) (string, error) {
		return firstValue(ctx, field), nil
	}
}

// MultiGRPCTokenExtractor tries extractors in order and returns the first
// non-empty token. The first error stops the search.
func MultiGRPCTokenExtractor(extractors ...GRPCTokenExtractor) GRPCTokenExtractor {
	return func(ctx context.Context) (string, error) {
		for _, extract := range extractors {
			token, err := extract(ctx)
			if err != nil || token != "" {
				return token, err
			}
		}
		return "", nil
	}
}

func firstValue(ctx context.Context, key string) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(key); len(values) > 0 {
		return values[0]
	}
	return ""
}
