package adaptor

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"resort-booking/internal/usecase"
	"resort-booking/pkg/utils"

	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies read in full, such as signed webhooks.
const maxBodyBytes = 1 << 20

// handleServiceError maps usecase sentinels onto HTTP statuses. Anything
// unclassified is a store or infrastructure failure and answers 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	fields := []zap.Field{zap.Error(err), zap.String("operation", operation)}

	switch {
	case errors.Is(err, usecase.ErrValidation), errors.Is(err, usecase.ErrUnknownEventType):
		log.Warn(operation+" validation failed", fields...)
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrInvalidSignature):
		log.Warn(operation+" failed - invalid signature", fields...)
		utils.ResponseUnauthorized(w, "Invalid signature")

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", fields...)
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrConflict):
		log.Warn(operation+" failed - conflict", fields...)
		utils.ResponseConflict(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidTransition):
		log.Warn(operation+" failed - invalid state", fields...)
		utils.ResponseUnprocessable(w, err.Error())

	case errors.Is(err, usecase.ErrGateway):
		log.Error(operation+" failed - gateway", fields...)
		utils.ResponseJSON(w, http.StatusBadGateway, false, "Payment gateway unavailable", nil, nil)

	default:
		log.Error("Failed to "+operation, fields...)
		utils.ResponseInternalError(w, "Internal server error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// readBody reads the whole body, failing with *http.MaxBytesError past
// maxBodyBytes instead of truncating it.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// respondBodyError answers 413 for an oversized body and 400 otherwise.
func respondBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		utils.ResponseTooLarge(w, "Request body too large")
		return
	}
	utils.ResponseBadRequest(w, "Invalid request body", nil)
}
