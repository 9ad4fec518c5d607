package cursorerr

import (
	"errors"

	"github.com/cursorbridge/cursorbridge/internal/wire"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToStatus maps an error from this package's vocabulary (or a wire-level
// TrailerError carrying its own grpc-status) onto the standard gRPC status
// vocabulary, so logs and diagnostics carry a code a gRPC-literate reader
// recognizes rather than a bespoke string.
func ToStatus(err error) *status.Status {
	var trailer *wire.TrailerError
	if errors.As(err, &trailer) {
		return status.New(trailer.Code(), trailer.Message)
	}
	switch {
	case errors.Is(err, Unauthorized):
		return status.New(codes.Unauthenticated, err.Error())
	case errors.Is(err, DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, ProtocolFraming):
		return status.New(codes.DataLoss, err.Error())
	case errors.Is(err, TransportIO):
		return status.New(codes.Unavailable, err.Error())
	case errors.Is(err, HeartbeatStarvation):
		return status.New(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, AuthRefreshFailed):
		return status.New(codes.Unauthenticated, err.Error())
	default:
		return status.New(codes.Unknown, err.Error())
	}
}
