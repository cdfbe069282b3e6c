package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/leonelm2/PotreroMobile/handlers"
	"github.com/leonelm2/PotreroMobile/middleware"
)

type Options struct {
	Logger         *slog.Logger
	Tokens         middleware.TokenParser
	AllowedOrigins []string
	SwaggerEnabled bool

	Auth         *handlers.AuthHandler
	Disciplines  *handlers.DisciplineHandler
	Teams        *handlers.TeamHandler
	Players      *handlers.PlayerHandler
	Championship *handlers.ChampionshipHandler
	Matches      *handlers.MatchHandler
	WebSocket    *handlers.WebSocketHandler
}

// pathNames is the vocabulary one set of resource routes is mounted under.
type pathNames struct {
	disciplines   string
	teams         string
	players       string
	championships string
	matches       string

	logo            string
	teamList        string
	standings       string
	bracket         string
	status          string
	generateGroups  string
	generateBracket string
	advanceKnockout string
	result          string
}

var english = pathNames{
	disciplines:     "/disciplines",
	teams:           "/teams",
	players:         "/players",
	championships:   "/championships",
	matches:         "/matches",
	logo:            "/logo",
	teamList:        "/teams",
	standings:       "/standings",
	bracket:         "/bracket",
	status:          "/status",
	generateGroups:  "/generate-groups",
	generateBracket: "/generate-bracket",
	advanceKnockout: "/advance-knockout",
	result:          "/result",
}

// spanish holds the paths the mobile client calls.
var spanish = pathNames{
	disciplines:     "/disciplinas",
	teams:           "/equipos",
	players:         "/jugadores",
	championships:   "/campeonatos",
	matches:         "/partidos",
	logo:            "/logo",
	teamList:        "/equipos",
	standings:       "/posiciones",
	bracket:         "/llaves",
	status:          "/estado",
	generateGroups:  "/generar-grupos",
	generateBracket: "/generar-llaves",
	advanceKnockout: "/avanzar-eliminatoria",
	result:          "/resultado",
}

// SetupRoutes mounts every endpoint on r. Reads of the registry are public;
// championship data needs a session and engine operations need an administrator.
func SetupRoutes(r chi.Router, opts Options) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	r.Get("/healthz", handlers.Health)

	if opts.SwaggerEnabled {
		r.Get("/swagger/doc.json", handlers.OpenAPI)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	}

	r.Get("/ws/championships/{championshipID}", opts.WebSocket.ServeWs)

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))
		r.Use(middleware.Authenticate(opts.Tokens))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", opts.Auth.Register)
			r.Post("/login", opts.Auth.Login)
			r.With(middleware.RequireAuth).Get("/me", opts.Auth.Me)
		})
		// Paths used by the mobile and web clients.
		r.Route("/autenticacion", func(r chi.Router) {
			r.Post("/registro", opts.Auth.Register)
			r.Post("/iniciar-sesion", opts.Auth.Login)
		})

		mountResources(r, opts, english)
		mountResources(r, opts, spanish)
	})
}

func mountResources(r chi.Router, opts Options, p pathNames) {
	r.Route(p.disciplines, func(r chi.Router) {
		r.Get("/", opts.Disciplines.List)
		r.Get("/{disciplineID}", opts.Disciplines.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", opts.Disciplines.Create)
			r.Put("/{disciplineID}", opts.Disciplines.Update)
			r.Delete("/{disciplineID}", opts.Disciplines.Delete)
		})
	})

	r.Route(p.teams, func(r chi.Router) {
		r.Get("/", opts.Teams.List)
		r.Get("/{teamID}", opts.Teams.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", opts.Teams.Create)
			r.Put("/{teamID}", opts.Teams.Update)
			r.Post("/{teamID}"+p.logo, opts.Teams.UploadLogo)
		})
		r.With(middleware.RequireAdmin).Delete("/{teamID}", opts.Teams.Delete)
	})

	r.Route(p.players, func(r chi.Router) {
		r.Get("/", opts.Players.List)
		r.Get("/{playerID}", opts.Players.Get)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/", opts.Players.Create)
			r.Put("/{playerID}", opts.Players.Update)
		})
		r.With(middleware.RequireAdmin).Delete("/{playerID}", opts.Players.Delete)
	})

	r.Route(p.championships, func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		admin := r.With(middleware.RequireAdmin)

		r.Get("/", opts.Championship.List)
		admin.Post("/", opts.Championship.Create)

		r.Route("/{championshipID}", func(r chi.Router) {
			admin := r.With(middleware.RequireAdmin)

			r.Get("/", opts.Championship.Get)
			r.Get(p.teamList, opts.Championship.Teams)
			r.Get(p.standings, opts.Championship.Standings)
			r.Get(p.bracket, opts.Championship.Bracket)

			admin.Put("/", opts.Championship.Update)
			admin.Delete("/", opts.Championship.Delete)
			admin.Put(p.status, opts.Championship.SetStatus)
			admin.Post(p.generateGroups, opts.Championship.GenerateGroups)
			admin.Post(p.generateBracket, opts.Championship.GenerateBracket)
			admin.Post(p.advanceKnockout, opts.Championship.AdvanceKnockout)
		})
	})

	r.Route(p.matches, func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", opts.Matches.List)
		r.With(middleware.RequireAdmin).Put("/{matchID}"+p.result, opts.Matches.SubmitResult)
	})
}
