package controller

import (
	"errors"
	"net/http"

	domain "pulsechat/internal/pkg/messaging/domain"
	"pulsechat/internal/pkg/messaging/usecase"
)

// statusFor maps use case errors onto HTTP statuses. Non-mutual private
// creation is Forbidden; sending as a non-participant is Unauthorized —
// the two failure kinds stay distinct on the wire.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotParticipant):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotMutualFollow):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
