package handlers

import (
	"fmt"
	"net/http"

	"github.com/leonelm2/PotreroMobile/middleware"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: ms}
}

type matchResultRequest struct {
	HomeScore *int `json:"homeScore" validate:"required,min=0"`
	AwayScore *int `json:"awayScore" validate:"required,min=0"`
}

// List handles GET /api/matches?championship=&phase=&status=
func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter services.MatchListFilter
	championshipID, err := queryID(r, "championship")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	filter.ChampionshipID = championshipID

	query := r.URL.Query()
	if raw := query.Get("phase"); raw != "" {
		phase := models.MatchPhase(raw)
		if phase != models.PhaseGroup && phase != models.PhaseKnockout {
			badRequestResponse(w, r, fmt.Errorf("invalid phase query parameter %q", raw))
			return
		}
		filter.Phase = &phase
	}
	if raw := query.Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		if status != models.MatchPending && status != models.MatchPlayed {
			badRequestResponse(w, r, fmt.Errorf("invalid status query parameter %q", raw))
			return
		}
		filter.Status = &status
	}

	matches, err := h.matchService.List(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"matches": matches})
}

// SubmitResult handles PUT /api/matches/{matchID}/result
func (h *MatchHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input matchResultRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	match, err := h.matchService.SubmitResult(r.Context(), middleware.ActorFromContext(r.Context()), id, *input.HomeScore, *input.AwayScore)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"match": match})
}
