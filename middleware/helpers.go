package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/leonelm2/PotreroMobile/models"
)

// Kinds mirror services.KindOf; middleware cannot import services.
const (
	kindUnauthorized = "unauthorized"
	kindForbidden    = "forbidden"
)

type contextKey string

const (
	actorContextKey  contextKey = "actor"
	loggerContextKey contextKey = "logger"
)

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the anonymous actor when the request carried no token.
func ActorFromContext(ctx context.Context) models.Actor {
	actor, _ := ctx.Value(actorContextKey).(models.Actor)
	return actor
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext returns the request scoped logger, or slog.Default outside a request.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"kind": kind, "msg": msg})
}
