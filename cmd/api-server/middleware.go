package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/protomem/activity-tracker/internal/ctxstore"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/response"
	"github.com/rs/cors"

	"github.com/tomasen/realip"
)

const (
	_traceIDKey = ctxstore.Key("traceId")
	_actorKey   = ctxstore.Key("actor")

	_userIDHeader = "X-User-ID"
)

func (app *application) traceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tid := genTraceID()
		ctx := ctxstore.With(r.Context(), _traceIDKey, tid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err != nil {
				app.serverError(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *application) logAccess(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mw := response.NewMetricsResponseWriter(w)
		next.ServeHTTP(mw, r)

		var (
			ip     = realip.FromRequest(r)
			method = r.Method
			url    = r.URL.String()
			proto  = r.Proto
			tid    = ctxstore.MustFrom[string](r.Context(), _traceIDKey)
		)

		userAttrs := slog.Group("user", "ip", ip, "id", r.Header.Get(_userIDHeader))
		requestAttrs := slog.Group("request", "method", method, "url", url, "proto", proto, _traceIDKey.String(), tid)
		responseAttrs := slog.Group("response", "status", mw.StatusCode, "size", mw.BytesCount)

		app.serverLogger().Info("access", userAttrs, requestAttrs, responseAttrs)
	})
}

func (app *application) CORS(next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"*"},
	}).Handler(next)
}

// authenticate resolves the caller from the X-User-ID header set by the
// identity layer in front of the service.
func (app *application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get(_userIDHeader)
		if raw == "" {
			app.unauthorized(w, r, "Missing "+_userIDHeader+" header")
			return
		}

		id, err := strconv.ParseUint(raw, 10, 0)
		if err != nil || id == 0 {
			app.unauthorized(w, r, "Invalid "+_userIDHeader+" header")
			return
		}

		actor, err := app.tracker.Actor(r.Context(), model.ID(id))
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				app.unauthorized(w, r, "Unknown user")
				return
			}

			app.trackerError(w, r, err)
			return
		}

		ctx := ctxstore.With(r.Context(), _actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFrom(r *http.Request) model.User {
	return ctxstore.MustFrom[model.User](r.Context(), _actorKey)
}

func genTraceID() string {
	id, _ := uuid.NewRandom()
	return id.String()
}
