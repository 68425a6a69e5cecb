package tracker

import (
	"fmt"

	"github.com/protomem/activity-tracker/internal/model"
)

func invalidTime(format string, args ...any) error {
	return model.NewError("attendance", fmt.Errorf("%w: "+format, append([]any{model.ErrInvalidTime}, args...)...))
}

func invalidDate(err error) error {
	return fmt.Errorf("%w: %v", model.ErrInvalidTime, err)
}

func invalidRange() error {
	return fmt.Errorf("%w: range end precedes start", model.ErrInvalidTime)
}
