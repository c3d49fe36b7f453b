// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/ballotbox/auth"
	"github.com/danielhkuo/ballotbox/election"
	"github.com/danielhkuo/ballotbox/middleware"
	"github.com/danielhkuo/ballotbox/models"
)

// Authenticator resolves the voter behind a request
type Authenticator interface {
	Authenticate(r *http.Request) (auth.Identity, error)
}

type ElectionHandler struct {
	engine *election.Engine
	authn  Authenticator
}

func NewElectionHandler(engine *election.Engine, authn Authenticator) *ElectionHandler {
	return &ElectionHandler{engine: engine, authn: authn}
}

// identify authenticates the request and applies a credential's time
// override to the returned request. On failure the response is written.
func (h *ElectionHandler) identify(w http.ResponseWriter, r *http.Request) (auth.Identity, *http.Request, bool) {
	id, err := h.authn.Authenticate(r)
	if err != nil {
		writeAuthError(w, err)
		return auth.Identity{}, r, false
	}
	return id, withIdentityTime(r, id), true
}

func withIdentityTime(r *http.Request, id auth.Identity) *http.Request {
	if id.Now == nil {
		return r
	}
	return r.WithContext(election.ContextWithNow(r.Context(), *id.Now))
}

// SubmitVote handles POST /api/vote
func (h *ElectionHandler) SubmitVote(w http.ResponseWriter, r *http.Request) {
	id, r, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req models.RawVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, codeInvalidBody, "Invalid JSON")
		return
	}

	if err := h.engine.SubmitBallot(r.Context(), id.VoterID, req.Entries()); err != nil {
		writeEngineError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// Eligibility handles GET /api/eligibility
func (h *ElectionHandler) Eligibility(w http.ResponseWriter, r *http.Request) {
	id, r, ok := h.identify(w, r)
	if !ok {
		return
	}

	result, err := h.engine.CheckEligibility(r.Context(), id.VoterID)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.EligibilityResponse{
		Success:  true,
		Eligible: result.Eligible,
		Reason:   string(result.Reason),
	})
}

// Me handles GET /api/me
// Returns the voter ID and the time the server uses for this request
func (h *ElectionHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, r, ok := h.identify(w, r)
	if !ok {
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		Success:     true,
		StudentID:   id.VoterID,
		CurrentTime: h.engine.Now(r.Context()),
	})
}
