package connect

import (
	"context"
	"crypto/subtle"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
)

const (
	// ControlTokenHeader is the header name for the playback control token.
	ControlTokenHeader = "X-Control-Token"
)

// readOnlyProcedures never require the control token.
var readOnlyProcedures = map[string]bool{
	PlayerServiceGetStateProcedure:     true,
	PlayerServiceListEpisodesProcedure: true,
}

// NewControlTokenInterceptor creates an interceptor that validates the control
// token on mutating PlayerService methods. An empty token disables the check.
func NewControlTokenInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token == "" || readOnlyProcedures[req.Spec().Procedure] {
				return next(ctx, req)
			}

			// Extract token from metadata
			got := req.Header().Get(ControlTokenHeader)
			if got == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("control token required"))
			}

			// Validate token
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("invalid control token"))
			}

			// Call next handler
			return next(ctx, req)
		}
	}
}
