package usecase

import (
	"errors"
	"fmt"

	"resort-booking/pkg/utils"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidSignature  = errors.New("invalid signature")
	ErrUnknownEventType  = errors.New("unknown event type")
	ErrGateway           = errors.New("payment gateway failure")
)

func validationError(errs map[string]string) error {
	return fmt.Errorf("%w: %s", ErrValidation, utils.FormatValidationErrors(errs))
}
