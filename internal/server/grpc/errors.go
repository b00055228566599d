package grpc

import (
	"errors"

	"github.com/dmitrijs2005/satellite/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var codeTable = []struct {
	err  error
	code codes.Code
}{
	{common.ErrPermissionDenied, codes.PermissionDenied},
	{common.ErrBatchNotFound, codes.NotFound},
	{common.ErrorNotFound, codes.NotFound},
	{common.ErrVersionConflict, codes.Aborted},
	{common.ErrSizeLimitExceeded, codes.ResourceExhausted},
	{common.ErrMaxChangesExceeded, codes.ResourceExhausted},
	{common.ErrBatchExpired, codes.DeadlineExceeded},
	{common.ErrIntegrityMismatch, codes.FailedPrecondition},
	{common.ErrInvalidInput, codes.InvalidArgument},
	{common.ErrTokenExpired, codes.Unauthenticated},
	{common.ErrInvalidToken, codes.Unauthenticated},
	{common.ErrorUnauthorized, codes.Unauthenticated},
}

// toStatus maps service errors to gRPC statuses. Errors that already carry
// a status pass through. Unknown errors become Internal with a generic
// message.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, e := range codeTable {
		if errors.Is(err, e.err) {
			return status.Error(e.code, err.Error())
		}
	}
	return status.Error(codes.Internal, "internal error")
}
