package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/protomem/activity-tracker/internal/ctxstore"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/request"
	"github.com/protomem/activity-tracker/internal/response"
	"github.com/protomem/activity-tracker/internal/stats"
	"github.com/protomem/activity-tracker/internal/timeline"
	"github.com/protomem/activity-tracker/internal/tracker"
	"github.com/protomem/activity-tracker/internal/validator"
)

// Handle Status
// Check if the server is up and running.
func (app *application) handleStatus(w http.ResponseWriter, r *http.Request) {
	if err := response.JSON(w, http.StatusOK, response.JSONObject{"status": "OK"}); err != nil {
		app.serverError(w, r, err)
	}
}

// pathUser parses {userId} and checks that the caller may act for it.
func (app *application) pathUser(w http.ResponseWriter, r *http.Request) (model.ID, bool) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		app.badRequest(w, r, err)
		return 0, false
	}

	if !actorFrom(r).CanManage(userID) {
		app.forbidden(w, r)
		return 0, false
	}

	return userID, true
}

type responseSession struct {
	Session *model.Entry `json:"session"`
}

// Handle Get Session
// Current open entry of the user, null when idle.
func (app *application) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	session, err := app.tracker.ActiveSession(r.Context(), userID)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, responseSession{Session: session}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestSwitchSession struct {
	CategoryID model.ID `json:"categoryId"`
}

// Handle Switch Session
// Close the running entry, if any, and start a new one.
func (app *application) handleSwitchSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	var input requestSwitchSession
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateRequestSwitchSession(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	entry, err := app.tracker.Switch(ctx, userID, input.CategoryID)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusCreated, responseSession{Session: &entry}); err != nil {
		app.serverError(w, r, err)
	}
}

type responseEntry struct {
	Entry model.Entry `json:"entry"`
}

// Handle Stop Session
// Close the running entry.
func (app *application) handleStopSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	entry, err := app.tracker.Stop(r.Context(), userID)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, responseEntry{Entry: entry}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestAddManualEntry struct {
	CategoryID model.ID  `json:"categoryId"`
	StartTime  time.Time `json:"startTime"`
}

// Handle Add Manual Entry
// Backfill a past start point. Its length comes from the next entry.
func (app *application) handleAddManualEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	var input requestAddManualEntry
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateRequestAddManualEntry(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	entry, err := app.tracker.AddManual(r.Context(), userID, input.CategoryID, input.StartTime)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusCreated, responseEntry{Entry: entry}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestEditEntry struct {
	CategoryID model.ID `json:"categoryId"`
}

// Handle Edit Entry
// Change the category of an entry. Times are left untouched.
func (app *application) handleEditEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := app.logger.With(
		_traceIDKey.String(), ctxstore.MustFrom[string](ctx, _traceIDKey),
	)

	entryID, err := entryIDFromRequest(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	var input requestEditEntry
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateRequestEditEntry(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	entry, err := app.tracker.EditCategory(ctx, actorFrom(r).ID, entryID, input.CategoryID)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	logger.Debug("entry edited", "entryId", entry.ID, "kind", entry.Kind())

	if err := response.JSON(w, http.StatusOK, responseEntry{Entry: entry}); err != nil {
		app.serverError(w, r, err)
	}
}

// Handle Delete Entry
func (app *application) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := entryIDFromRequest(r)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	if err := app.tracker.Delete(r.Context(), actorFrom(r).ID, entryID); err != nil {
		app.trackerError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type responseHistory struct {
	Date         string          `json:"date"`
	Entries      []timeline.Item `json:"entries"`
	TotalSeconds int64           `json:"totalSeconds"`
}

// Handle Get History
// Gapless timeline of one business day, today when ?date is absent.
func (app *application) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	date := app.tracker.Calendar().DateOf(app.tracker.Now())
	if d := optionalStringQueryParams(r, "date"); d != nil {
		date = *d
	}

	var v validator.Validator
	validateWorkDate(&v, date)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	items, err := app.tracker.History(r.Context(), userID, date)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	out := responseHistory{
		Date:         date,
		Entries:      items,
		TotalSeconds: int64(timeline.Total(items) / time.Second),
	}
	if out.Entries == nil {
		out.Entries = []timeline.Item{}
	}

	if err := response.JSON(w, http.StatusOK, out); err != nil {
		app.serverError(w, r, err)
	}
}

type responseAttendance struct {
	Attendance model.Attendance `json:"attendance"`
}

// Handle Leave
// End the work day: closes the running entry and records the leave.
func (app *application) handleLeave(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	record, err := app.tracker.Leave(r.Context(), userID)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, responseAttendance{Attendance: record}); err != nil {
		app.serverError(w, r, err)
	}
}

// Handle Resume
func (app *application) handleResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	record, err := app.tracker.Resume(r.Context(), userID)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, responseAttendance{Attendance: record}); err != nil {
		app.serverError(w, r, err)
	}
}

type requestFixDay struct {
	LeaveTime time.Time `json:"leaveTime"`
}

// Handle Fix Day
// Resolve a past day left without a leave record or with a dangling entry.
func (app *application) handleFixDay(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	date := chi.URLParam(r, "date")

	var input requestFixDay
	if err := request.DecodeJSONStrict(w, r, &input); err != nil {
		app.badRequest(w, r, err)
		return
	}

	var v validator.Validator
	validateWorkDate(&v, date)
	validateRequestFixDay(&v, input)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	record, err := app.tracker.Fix(r.Context(), actorFrom(r).ID, userID, date, input.LeaveTime)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, responseAttendance{Attendance: record}); err != nil {
		app.serverError(w, r, err)
	}
}

type responseDailyStatus struct {
	Status model.DailyStatus `json:"status"`
}

// Handle Check Status
func (app *application) handleCheckStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := app.pathUser(w, r)
	if !ok {
		return
	}

	date := chi.URLParam(r, "date")

	var v validator.Validator
	validateWorkDate(&v, date)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	status, err := app.tracker.CheckStatus(r.Context(), userID, date)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, responseDailyStatus{Status: status}); err != nil {
		app.serverError(w, r, err)
	}
}

// Handle Get Stats
// Time series and per-category totals. Either ?window or ?from and ?to
// select the range; ?userId may repeat and defaults to the caller.
func (app *application) handleGetStats(w http.ResponseWriter, r *http.Request) {
	loc := app.tracker.Calendar().Location()

	users, err := idsQueryParams(r, "userId")
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	from, hasFrom, err := timeQueryParams(r, "from", loc, false)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}
	to, hasTo, err := timeQueryParams(r, "to", loc, true)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	granularity := optionalStringQueryParams(r, "granularity")
	window := optionalStringQueryParams(r, "window")

	var v validator.Validator
	validateStatsQuery(&v, granularity, window, from, to, hasFrom, hasTo, loc)
	if v.HasErrors() {
		app.failedValidation(w, r, v)
		return
	}

	q := tracker.StatsQuery{
		Users: users,
		Start: from,
		End:   to,
	}
	if granularity != nil {
		q.Granularity = stats.Granularity(*granularity)
	}
	if window != nil {
		q.Window = stats.Window(*window)
	}

	result, err := app.tracker.Stats(r.Context(), actorFrom(r).ID, q)
	if err != nil {
		app.trackerError(w, r, err)
		return
	}

	if err := response.JSON(w, http.StatusOK, result); err != nil {
		app.serverError(w, r, err)
	}
}
