package handlers

import (
	"net/http"

	"github.com/leonelm2/PotreroMobile/middleware"
	"github.com/leonelm2/PotreroMobile/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// loginRequest accepts the login under any of the names the clients send.
type loginRequest struct {
	Login           string `json:"login"`
	UsernameOrEmail string `json:"usernameOrEmail"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password" validate:"required"`
}

func (in loginRequest) login() string {
	switch {
	case in.Login != "":
		return in.Login
	case in.UsernameOrEmail != "":
		return in.UsernameOrEmail
	case in.Username != "":
		return in.Username
	default:
		return in.Email
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registerRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}

	result, err := h.authService.Register(r.Context(), services.RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input loginRequest
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if fields := validateRequest(input); fields != nil {
		failedValidationResponse(w, r, fields)
		return
	}
	if input.login() == "" {
		failedValidationResponse(w, r, map[string]string{"login": "is required"})
		return
	}

	result, err := h.authService.Login(r.Context(), services.LoginInput{
		Login:    input.login(),
		Password: input.Password,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	respond(w, r, http.StatusOK, result)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Me(r.Context(), middleware.ActorFromContext(r.Context()))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, jsonResponse{"user": user})
}
