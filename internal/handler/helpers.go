package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/vasiliy-maslov/orders-service/internal/domain"
)

// ErrorResponse is the JSON error envelope: a stable code, a message and,
// for validation failures, per-field details.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"INTERNAL_ERROR","message":"failed to marshal response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

func respondWithDomainError(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)

	response := ErrorResponse{
		Code:    string(code),
		Message: err.Error(),
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		response.Message = "validation failed"
		response.Fields = validationErr.Fields
	}

	if code == domain.CodeInternal {
		log.Error().Err(err).Msg("handler: internal error")
		response.Message = "internal server error"
	}

	respondWithJSON(w, statusForCode(code), response)
}

func statusForCode(code domain.ErrorCode) int {
	switch code {
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeEntityNotFound:
		return http.StatusNotFound
	case domain.CodeInvalidOrderState, domain.CodeDuplicateKey, domain.CodeInsufficientStock:
		return http.StatusConflict
	case domain.CodeLockUnavailable:
		// Retryable: another request for the same customer holds the lock.
		return http.StatusConflict
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func respondWithValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	fields := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		fields[fieldErr.Field()] = "failed validation on '" + fieldErr.Tag() + "'"
	}

	respondWithJSON(w, http.StatusBadRequest, ErrorResponse{
		Code:    string(domain.CodeValidation),
		Message: "validation failed",
		Fields:  fields,
	})
}

func decodeAndValidate(r *http.Request, validate *validator.Validate, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return &domain.ValidationError{Fields: map[string]string{
			"body": "invalid request payload",
		}}
	}

	return validate.Struct(dest)
}
