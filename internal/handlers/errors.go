package handlers

import (
	"net/http"
	"tasklist/internal/logger"
	"tasklist/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError answers with the business error's code, message and
// details. It reports false when err is not a business error.
func handleBusinessError(w http.ResponseWriter, err error, extra ...Payload) bool {
	businessErr, ok := service.AsBusinessError(err)
	if !ok {
		return false
	}
	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Business error",
		zap.String("error_code", businessErr.Code),
		zap.String("message", businessErr.Message),
		zap.Int("http_status", statusCode))

	payload := []Payload{
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	}
	responseWithJSON(w, statusCode, append(payload, extra...)...)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodePrecondition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
