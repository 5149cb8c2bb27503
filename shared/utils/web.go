package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	internal_errors "github.com/orangery/ams/shared/errors"
	"github.com/orangery/ams/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

const bearerChallenge = "Bearer"

// WriteErrorAndStatusCode is the single place where domain errors become HTTP responses.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status, message := StatusFor(err)
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", bearerChallenge)
	}
	if status == http.StatusInternalServerError {
		logger.Log.Error("internal error", "error", err)
	}
	http.Error(w, message, status)
}

// StatusFor maps an error to a status code and the message shown to the client.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, internal_errors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Incorrect username or password"
	case errors.Is(err, internal_errors.ErrInvalidToken), errors.Is(err, internal_errors.ErrStaleIdentity):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, internal_errors.ErrForbidden):
		return http.StatusForbidden, "You do not have permission to access this resource"
	case errors.Is(err, internal_errors.ErrDuplicateUsername):
		return http.StatusConflict, "Existing username"
	}
	var e *internal_errors.ErrorWithStatusCode
	if errors.As(err, &e) {
		return e.StatusCode, e.Message
	}
	// default error is 500
	return http.StatusInternalServerError, "Internal server error"
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing or invalid: " + fieldNames(err), StatusCode: http.StatusBadRequest}
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request body is not valid json", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// Validate runs struct validation on values that did not come from a JSON body.
func Validate(body any) error {
	if err := validate.Struct(body); err != nil {
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing or invalid: " + fieldNames(err), StatusCode: http.StatusBadRequest}
	}
	return nil
}

func fieldNames(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return strings.Join(names, ", ")
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", internal_errors.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", internal_errors.ErrInvalidToken
	}
	return token, nil
}
