package handlers

import (
	"context"
	"net/http"

	"github.com/leonelm2/PotreroMobile/middleware"
	"github.com/leonelm2/PotreroMobile/models"
	"github.com/leonelm2/PotreroMobile/services"
)

type ChampionshipHandler struct {
	championshipService services.ChampionshipService
}

func NewChampionshipHandler(cs services.ChampionshipService) *ChampionshipHandler {
	return &ChampionshipHandler{championshipService: cs}
}

// Clients send the discipline as "discipline"; "disciplineId" is accepted too.
type createChampionshipRequest struct {
	Name               string     `json:"name" validate:"required,max=100"`
	Discipline         *entityID  `json:"discipline" validate:"omitempty,gt=0"`
	DisciplineID       *entityID  `json:"disciplineId" validate:"omitempty,gt=0"`
	Teams              []entityID `json:"teams" validate:"omitempty,unique,dive,gt=0"`
	GroupCount         int        `json:"groupCount" validate:"required,gt=0"`
	QualifiersPerGroup int        `json:"qualifiersPerGroup" validate:"required,gt=0"`
}

type updateChampionshipRequest struct {
	Name               *string     `json:"name" validate:"omitempty,max=100"`
	Discipline         *entityID   `json:"discipline" validate:"omitempty,gt=0"`
	DisciplineID       *entityID   `json:"disciplineId" validate:"omitempty,gt=0"`
	Teams              *[]entityID `json:"teams" validate:"omitempty,unique,dive,gt=0"`
	GroupCount         *int        `json:"groupCount" validate:"omitempty,gt=0"`
	QualifiersPerGroup *int        `json:"qualifiersPerGroup" validate:"omitempty,gt=0"`
	Status             *string     `json:"status" validate:"omitempty,oneof=draft groups_generated knockout completed"`
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft groups_generated knockout completed"`
}

func (h *ChampionshipHandler) List(w http.ResponseWriter, r *http.Request) {
	championships, err := h.championshipService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"championships": championships})
}

func (h *ChampionshipHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	championship, err := h.championshipService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"championship": championship})
}

func (h *ChampionshipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createChampionshipRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}
	disciplineID, fields := requireID("discipline", input.Discipline, input.DisciplineID)
	if fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	championship, err := h.championshipService.Create(r.Context(), middleware.ActorFromContext(r.Context()), services.CreateChampionshipInput{
		Name:               input.Name,
		DisciplineID:       disciplineID,
		TeamIDs:            entityIDs(input.Teams),
		GroupCount:         input.GroupCount,
		QualifiersPerGroup: input.QualifiersPerGroup,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"championship": championship})
}

func (h *ChampionshipHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input updateChampionshipRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}
	disciplineID, fields := pickID("discipline", input.Discipline, input.DisciplineID)
	if fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	update := services.UpdateChampionshipInput{
		Name:               input.Name,
		DisciplineID:       disciplineID,
		GroupCount:         input.GroupCount,
		QualifiersPerGroup: input.QualifiersPerGroup,
	}
	if input.Teams != nil {
		update.TeamIDs = entityIDs(*input.Teams)
	}
	if input.Status != nil {
		status := models.ChampionshipStatus(*input.Status)
		update.Status = &status
	}

	championship, err := h.championshipService.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, update)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"championship": championship})
}

func (h *ChampionshipHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input statusRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	championship, err := h.championshipService.SetStatus(r.Context(), middleware.ActorFromContext(r.Context()), id, models.ChampionshipStatus(input.Status))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"championship": championship})
}

func (h *ChampionshipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.championshipService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ChampionshipHandler) Teams(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teams, err := h.championshipService.Teams(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"teams": teams})
}

func (h *ChampionshipHandler) GenerateGroups(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, h.championshipService.GenerateGroups)
}

func (h *ChampionshipHandler) GenerateBracket(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, h.championshipService.GenerateBracket)
}

func (h *ChampionshipHandler) AdvanceKnockout(w http.ResponseWriter, r *http.Request) {
	h.runStage(w, r, h.championshipService.AdvanceKnockout)
}

type stageFunc func(ctx context.Context, actor models.Actor, id int) (*services.ChampionshipView, error)

func (h *ChampionshipHandler) runStage(w http.ResponseWriter, r *http.Request, stage stageFunc) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	championship, err := stage(r.Context(), middleware.ActorFromContext(r.Context()), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"championship": championship})
}

func (h *ChampionshipHandler) Standings(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	standings, err := h.championshipService.Standings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"standings": standings})
}

func (h *ChampionshipHandler) Bracket(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "championshipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matches, err := h.championshipService.Bracket(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"matches": matches})
}
