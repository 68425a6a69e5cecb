package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/workday"
)

func userIDFromRequest(r *http.Request) (model.ID, error) {
	return parseID("userId", chi.URLParam(r, "userId"))
}

func entryIDFromRequest(r *http.Request) (model.ID, error) {
	return parseID("entryId", chi.URLParam(r, "entryId"))
}

func parseID(name, raw string) (model.ID, error) {
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return model.ID(id), nil
}

// timeQueryParams accepts either an RFC 3339 instant or a bare date. A
// date is read in loc; with endOfDay it covers the whole date.
func timeQueryParams(r *http.Request, key string, loc *time.Location, endOfDay bool) (time.Time, bool, error) {
	val, ok := r.URL.Query().Get(key), r.URL.Query().Has(key)
	if !ok {
		return time.Time{}, false, nil
	}
	val = strings.Trim(val, `'"`)

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true, nil
	}

	t, err := time.ParseInLocation(workday.DateLayout, val, loc)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid %s %q: expected YYYY-MM-DD or RFC 3339", key, val)
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return t, true, nil
}

func idsQueryParams(r *http.Request, key string) ([]model.ID, error) {
	var ids []model.ID
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			id, err := parseID(key, strings.TrimSpace(part))
			if err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func optionalStringQueryParams(r *http.Request, key string) *string {
	ref := new(string)
	val, ok := r.URL.Query().Get(key), r.URL.Query().Has(key)
	if !ok {
		return nil
	}
	*ref = val
	return ref
}
