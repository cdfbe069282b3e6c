package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/leonelm2/PotreroMobile/middleware"
	"github.com/leonelm2/PotreroMobile/services"
)

const maxLogoBytes = 5 << 20

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(ts services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: ts}
}

// Clients send the discipline as "discipline"; "disciplineId" is accepted too.
type createTeamRequest struct {
	Name         string    `json:"name" validate:"required,max=100"`
	Discipline   *entityID `json:"discipline" validate:"omitempty,gt=0"`
	DisciplineID *entityID `json:"disciplineId" validate:"omitempty,gt=0"`
	LogoURL      *string   `json:"logoUrl" validate:"omitempty,url"`
}

type updateTeamRequest struct {
	Name         *string   `json:"name" validate:"omitempty,max=100"`
	Discipline   *entityID `json:"discipline" validate:"omitempty,gt=0"`
	DisciplineID *entityID `json:"disciplineId" validate:"omitempty,gt=0"`
	LogoURL      *string   `json:"logoUrl"`
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	disciplineID, err := queryID(r, "discipline")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	teams, err := h.teamService.List(r.Context(), services.TeamListFilter{DisciplineID: disciplineID})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"teams": teams})
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	team, err := h.teamService.Get(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input createTeamRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	// An empty logo field in the create form means no logo.
	if input.LogoURL != nil && *input.LogoURL == "" {
		input.LogoURL = nil
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

	team, err := h.teamService.Create(r.Context(), middleware.ActorFromContext(r.Context()), services.CreateTeamInput{
		Name:         input.Name,
		DisciplineID: disciplineID,
		LogoURL:      input.LogoURL,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusCreated, jsonResponse{"team": team})
}

func (h *TeamHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input updateTeamRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input == (updateTeamRequest{}) {
		badRequestResponse(w, r, errors.New("no fields provided for update"))
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

	team, err := h.teamService.Update(r.Context(), middleware.ActorFromContext(r.Context()), id, services.UpdateTeamInput{
		Name:         input.Name,
		DisciplineID: disciplineID,
		LogoURL:      input.LogoURL,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}

func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.teamService.Delete(r.Context(), middleware.ActorFromContext(r.Context()), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadLogo expects a multipart form with the image in the "logo" field.
func (h *TeamHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes+1024)
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to parse multipart form: %w", err))
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		badRequestResponse(w, r, fmt.Errorf("failed to get logo file from form: %w", err))
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content-type header is required for logo"))
		return
	}

	team, err := h.teamService.UploadLogo(r.Context(), middleware.ActorFromContext(r.Context()), id, contentType, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"team": team})
}
