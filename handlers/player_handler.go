package handlers

import (
	"errors"
	"net/http"

	"github.com/leonelm2/PotreroMobile/middleware"
	"github.com/leonelm2/PotreroMobile/services"
)

type PlayerHandler struct {
	playerService services.PlayerService
}

func NewPlayerHandler(ps services.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerService: ps}
}

// Clients send the team as "team"; "teamId" is accepted too.
type createPlayerRequest struct {
	Name     string    `json:"name" validate:"required,max=100"`
	Team     *entityID `json:"team" validate:"omitempty,gt=0"`
	TeamID   *entityID `json:"teamId" validate:"omitempty,gt=0"`
	Number   int       `json:"number" validate:"min=0,max=999"`
	Position string    `json:"position" validate:"max=50"`
	Age      int       `json:"age" validate:"min=0,max=120"`
}

type updatePlayerRequest struct {
	Name     *string   `json:"name" validate:"omitempty,max=100"`
	Team     *entityID `json:"team" validate:"omitempty,gt=0"`
	TeamID   *entityID `json:"teamId" validate:"omitempty,gt=0"`
	Number   *int      `json:"number" validate:"omitempty,min=0,max=999"`
	Position *string   `json:"position" validate:"omitempty,max=50"`
	Age      *int      `json:"age" validate:"omitempty,min=0,max=120"`
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	teamID, err := queryID(r, "team")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	players, err := h.playerService.List(r.Context(), services.PlayerListFilter{TeamID: teamID})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"players": players})
}

func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.playerService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createPlayerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}
	teamID, fields := requireID("team", input.Team, input.TeamID)
	if fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	player, err := h.playerService.Create(r.Context(), middleware.ActorFromContext(r.Context()), services.CreatePlayerInput{
		Name:     input.Name,
		TeamID:   teamID,
		Number:   input.Number,
		Position: input.Position,
		Age:      input.Age,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"player": player})
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input updatePlayerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input == (updatePlayerRequest{}) {
		badRequestResponse(w, r, errors.New("no fields provided for update"))
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}
	teamID, fields := pickID("team", input.Team, input.TeamID)
	if fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	player, err := h.playerService.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, services.UpdatePlayerInput{
		Name:     input.Name,
		TeamID:   teamID,
		Number:   input.Number,
		Position: input.Position,
		Age:      input.Age,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"player": player})
}

func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.playerService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
