package handlers

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.json
var openAPIDocument []byte

func Health(w http.ResponseWriter, r *http.Request) {
	respond(w, r, http.StatusOK, jsonResponse{"status": "ok"})
}

// OpenAPI serves the API description read by the swagger UI.
func OpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openAPIDocument)
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	notFoundResponse(w, r)
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	methodNotAllowedResponse(w, r)
}
