package handlers

import (
	"net/http"

	"github.com/leonelm2/PotreroMobile/middleware"
	"github.com/leonelm2/PotreroMobile/services"
)

type DisciplineHandler struct {
	disciplineService services.DisciplineService
}

func NewDisciplineHandler(ds services.DisciplineService) *DisciplineHandler {
	return &DisciplineHandler{disciplineService: ds}
}

type disciplineRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

func (h *DisciplineHandler) List(w http.ResponseWriter, r *http.Request) {
	disciplines, err := h.disciplineService.List(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"disciplines": disciplines})
}

func (h *DisciplineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "disciplineID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	discipline, err := h.disciplineService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"discipline": discipline})
}

func (h *DisciplineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input disciplineRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	discipline, err := h.disciplineService.Create(r.Context(), middleware.ActorFromContext(r.Context()), services.DisciplineInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"discipline": discipline})
}

func (h *DisciplineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "disciplineID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input disciplineRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	discipline, err := h.disciplineService.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, services.DisciplineInput{
		Name:        input.Name,
		Description: input.Description,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"discipline": discipline})
}

func (h *DisciplineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "disciplineID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.disciplineService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
