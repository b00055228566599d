package api

import (
	"github.com/dmitrijs2005/satellite/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FromStatus maps a gRPC status back to the matching common error. The
// result unwraps to the sentinel and prints the server message.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.OK {
		return err
	}
	var sentinel error
	switch st.Code() {
	case codes.PermissionDenied:
		sentinel = common.ErrPermissionDenied
	case codes.NotFound:
		sentinel = common.ErrorNotFound
	case codes.Aborted:
		sentinel = common.ErrVersionConflict
	case codes.ResourceExhausted:
		sentinel = common.ErrSizeLimitExceeded
	case codes.DeadlineExceeded:
		sentinel = common.ErrBatchExpired
	case codes.FailedPrecondition:
		sentinel = common.ErrIntegrityMismatch
	case codes.InvalidArgument:
		sentinel = common.ErrInvalidInput
	case codes.Unauthenticated:
		sentinel = common.ErrorUnauthorized
	default:
		sentinel = common.ErrorInternal
	}
	return &remoteError{sentinel: sentinel, msg: st.Message()}
}

type remoteError struct {
	sentinel error
	msg      string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.sentinel }
