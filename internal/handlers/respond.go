package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/kirin765/naver-smartstore/internal/middleware"
	"github.com/kirin765/naver-smartstore/internal/models"
	"github.com/kirin765/naver-smartstore/internal/services"
)

const maxBodyBytes = 1_048_576

var errEmptyBody = errors.New("empty body")

// decodeJSON reads exactly one JSON object from the request body into dst.
// It returns errEmptyBody when the body is empty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("request body must only contain a single JSON object")
	}
	return nil
}

// requireUser returns the authenticated user id or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return "", false
	}
	return userID, true
}

// statusFor maps a service error to its HTTP status and client message.
func statusFor(err error) (int, string) {
	var insufficient *models.InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		return http.StatusForbidden, fmt.Sprintf("Insufficient credits: need %d more credits", insufficient.Shortfall())
	case errors.Is(err, models.ErrInsufficientCredits):
		return http.StatusForbidden, "Insufficient credits"
	case errors.Is(err, models.ErrPurchaseDisabled):
		return http.StatusForbidden, "Credit purchases are not available"
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest, "Validation failed"
	case errors.Is(err, models.ErrUnauthenticated), errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrAccountNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests, "Too many generation requests, try again later"
	case errors.Is(err, models.ErrGenerationFailed):
		return http.StatusInternalServerError, "Generation failed, no credits were charged"
	default:
		return http.StatusInternalServerError, "An Internal Error Occurred"
	}
}

// writeError logs err and writes the mapped error response. Validation details
// are included for invalid requests.
func writeError(w http.ResponseWriter, tag string, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] Request failed: %v", tag, err)
	}
	services.SendErrorResponse(w, message, status, err)
}
