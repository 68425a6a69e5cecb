package main

import (
	"errors"
	"time"

	"github.com/protomem/activity-tracker/internal/model"
	"github.com/protomem/activity-tracker/internal/stats"
	"github.com/protomem/activity-tracker/internal/validator"
	"github.com/protomem/activity-tracker/internal/workday"
)

// Validation rules

func validateCategoryID(v *validator.Validator, categoryID model.ID) {
	v.CheckField(validator.Positive(categoryID), "categoryId", "must be a positive number")
}

func validateRequestSwitchSession(v *validator.Validator, request requestSwitchSession) {
	validateCategoryID(v, request.CategoryID)
}

func validateRequestAddManualEntry(v *validator.Validator, request requestAddManualEntry) {
	validateCategoryID(v, request.CategoryID)
	v.CheckField(validator.NotZeroTime(request.StartTime), "startTime", "must be provided")
}

func validateRequestEditEntry(v *validator.Validator, request requestEditEntry) {
	validateCategoryID(v, request.CategoryID)
}

func validateRequestFixDay(v *validator.Validator, request requestFixDay) {
	v.CheckField(validator.NotZeroTime(request.LeaveTime), "leaveTime", "must be provided")
}

func validateWorkDate(v *validator.Validator, date string) {
	v.CheckField(workday.ParseDate(date) == nil, "date", "must be a date in YYYY-MM-DD format")
}

func validateStatsQuery(v *validator.Validator, granularity, window *string, from, to time.Time, hasFrom, hasTo bool, loc *time.Location) {
	g := stats.Auto
	if granularity != nil {
		var err error
		g, err = stats.ParseGranularity(*granularity)
		v.CheckField(err == nil, "granularity", "must be one of day, week, month, year")
	}

	if window != nil {
		v.CheckField(
			validator.In(stats.Window(*window), stats.Last30Days, stats.Last12Weeks, stats.Last12Months, stats.Last5Years),
			"window",
			"must be one of last30days, last12weeks, last12months, last5years",
		)
		v.CheckField(granularity == nil, "granularity", "cannot be combined with window")
		v.CheckField(!hasFrom && !hasTo, "window", "cannot be combined with from and to")
		return
	}

	v.CheckField(hasFrom, "from", "must be provided without a window")
	v.CheckField(hasTo, "to", "must be provided without a window")
	if !hasFrom || !hasTo {
		return
	}

	v.CheckField(!to.Before(from), "to", "must not precede from")
	if _, err := stats.CheckRange(from, to, g, loc); errors.Is(err, stats.ErrRangeTooLarge) {
		v.CheckField(false, "to", "range has too many buckets for the granularity")
	}
}
