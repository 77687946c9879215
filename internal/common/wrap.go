package common

import (
	"fmt"

	"github.com/samber/oops"
)

// StoreFailure wraps an unexpected repository error. The result matches
// ErrStore with errors.Is and carries the operation name as oops context.
func StoreFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return oops.Code(ErrStore.Code).
		With("operation", op).
		Wrap(fmt.Errorf("%w: %w", ErrStore, err))
}

// DeliveryFailure wraps a mail transport error so that it matches
// ErrDeliveryFailed.
func DeliveryFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return oops.Code(ErrDeliveryFailed.Code).
		With("operation", op).
		Wrap(fmt.Errorf("%w: %w", ErrDeliveryFailed, err))
}
