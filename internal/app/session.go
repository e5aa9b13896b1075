package app

import (
	"log/slog"
	"net/http"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
	SessionKeyGuest  = sessionKey("guest")
)

func (s sessionKey) String() string {
	return string(s)
}

type contextKey string

const contextKeyLogger = contextKey("logger")

func (app *Application) contextGetUserId(r *http.Request) int {
	userId, ok := r.Context().Value(SessionKeyUserId).(int)
	if !ok {
		panic("missing user id from context")
	}

	return userId
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(contextKeyLogger).(*slog.Logger)
	if !ok {
		return app.logger
	}

	return logger
}
