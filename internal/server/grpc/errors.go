package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrorCodeTrailer carries the stable failure code next to the status.
const ErrorCodeTrailer = "error_code"

// statusCode maps a failure kind to its transport code.
func statusCode(k common.Kind) codes.Code {
	switch k {
	case common.KindValidation:
		return codes.InvalidArgument
	case common.KindConflict:
		return codes.AlreadyExists
	case common.KindNotFound:
		return codes.NotFound
	case common.KindAuthFailure:
		return codes.Unauthenticated
	case common.KindStateViolation:
		return codes.FailedPrecondition
	case common.KindDependency:
		return codes.Unavailable
	case common.KindUnknown:
		return codes.Internal
	}
	return codes.Internal
}

// toStatus converts a service error to a gRPC status and sets the failure
// code trailer. Only the failure's own message reaches the caller; wrapped
// causes stay in the server log.
func toStatus(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	kind := common.KindOf(err)
	code := common.CodeOf(err)
	if code == "" {
		code = "INTERNAL"
	}
	_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorCodeTrailer, code))

	msg := "internal error"
	var f *common.Failure
	if errors.As(err, &f) {
		msg = f.Message
	}
	if kind == common.KindValidation {
		msg = err.Error()
	}
	return status.Error(statusCode(kind), msg)
}
