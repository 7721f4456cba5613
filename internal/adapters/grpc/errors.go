package grpc

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rippleeffect/charity-service/internal/domain"
)

// toStatus maps domain errors onto gRPC codes. Unknown errors become
// Internal without leaking their text.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	code := codes.Internal
	switch {
	case errors.Is(err, domain.ErrServiceUnavailable):
		code = codes.Unavailable
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrInvalidAmount):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrConfirmationRequired),
		errors.Is(err, domain.ErrNoBalance),
		errors.Is(err, domain.ErrMissingDestination),
		errors.Is(err, domain.ErrBelowMinimum):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrDuplicateCharity):
		code = codes.AlreadyExists
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrConflict):
		code = codes.Aborted
	case errors.Is(err, domain.ErrMissingUser):
		code = codes.Unauthenticated
	case errors.Is(err, context.DeadlineExceeded):
		code = codes.DeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = codes.Canceled
	}
	if code == codes.Internal {
		return status.Error(code, "internal error")
	}
	return status.Error(code, err.Error())
}
