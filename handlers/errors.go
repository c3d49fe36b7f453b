// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
)

// codeInvalidBody is sent when the request body is not JSON at all
const codeInvalidBody = "invalid-body"

func statusFor(code election.Code) int {
	switch code.Category() {
	case election.CategoryPeriod, election.CategoryEligibility:
		return http.StatusForbidden
	case election.CategoryValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeEngineError maps an engine error to its status and code. Internal
// causes are logged here and never sent.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	code := election.CodeOf(err)
	if code == election.CodeInternal {
		slog.Error("request failed", "path", r.URL.Path, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, string(code), "")
		return
	}
	middleware.ErrorResponse(w, statusFor(code), string(code), election.DetailOf(err))
}

func writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrMissingAuthorization):
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrMissingAuthorization.Error(), "")
	case errors.Is(err, auth.ErrNotAuthorizedDomain):
		middleware.ErrorResponse(w, http.StatusForbidden, auth.ErrNotAuthorizedDomain.Error(), "")
	default:
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidToken.Error(), "")
	}
}
