package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/protomem/activity-tracker/internal/ctxstore"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/response"
	"github.com/protomem/activity-tracker/internal/stats"
	"github.com/protomem/activity-tracker/internal/validator"
)

func (app *application) reportServerError(r *http.Request, err error) {
	var (
		message = err.Error()
		method  = r.Method
		url     = r.URL.String()
		trace   = string(debug.Stack())
	)

	tid, _ := ctxstore.From[string](r.Context(), _traceIDKey)

	requestAttrs := slog.Group("request", "method", method, "url", url, _traceIDKey.String(), tid)
	app.serverLogger().Error(message, requestAttrs, "trace", trace)
}

func (app *application) errorMessage(w http.ResponseWriter, r *http.Request, status int, message string, headers http.Header) {
	err := response.JSONWithHeaders(w, status, response.JSONObject{"error": message}, headers)
	if err != nil {
		app.reportServerError(r, err)
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.reportServerError(r, err)

	message := "The server encountered a problem and could not process your request"
	app.errorMessage(w, r, http.StatusInternalServerError, message, nil)
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	message := "The requested resource could not be found"
	app.errorMessage(w, r, http.StatusNotFound, message, nil)
}

func (app *application) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	message := fmt.Sprintf("The %s method is not supported for this resource", r.Method)
	app.errorMessage(w, r, http.StatusMethodNotAllowed, message, nil)
}

func (app *application) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	app.errorMessage(w, r, http.StatusBadRequest, err.Error(), nil)
}

func (app *application) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	app.errorMessage(w, r, http.StatusUnauthorized, message, nil)
}

func (app *application) forbidden(w http.ResponseWriter, r *http.Request) {
	message := "You are not allowed to access this resource"
	app.errorMessage(w, r, http.StatusForbidden, message, nil)
}

func (app *application) failedValidation(w http.ResponseWriter, r *http.Request, v validator.Validator) {
	err := response.JSON(w, http.StatusUnprocessableEntity, v)
	if err != nil {
		app.serverError(w, r, err)
	}
}

// trackerError maps domain error kinds to HTTP statuses.
func (app *application) trackerError(w http.ResponseWriter, r *http.Request, err error) {
	var status int

	switch {
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrCategoryNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrNoActiveSession), errors.Is(err, model.ErrExists):
		status = http.StatusConflict
	case errors.Is(err, model.ErrInvalidTime),
		errors.Is(err, stats.ErrUnknownWindow),
		errors.Is(err, stats.ErrUnknownGranularity),
		errors.Is(err, stats.ErrRangeTooLarge):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, model.ErrForbidden), errors.Is(err, model.ErrUserNotActive):
		status = http.StatusForbidden
	default:
		app.serverError(w, r, err)
		return
	}

	app.errorMessage(w, r, status, err.Error(), nil)
}
