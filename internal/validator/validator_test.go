package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidator(t *testing.T) {
	var v Validator
	assert.False(t, v.HasErrors())

	v.Check(NotBlank("x"), "never")
	v.CheckField(Positive(0), "categoryId", "must be positive")
	v.CheckField(Positive(0), "categoryId", "second message ignored")
	v.Check(In("year", "day", "week"), "unknown granularity")

	assert.True(t, v.HasErrors())
	assert.Equal(t, map[string]string{"categoryId": "must be positive"}, v.FieldErrors)
	assert.Equal(t, []string{"unknown granularity"}, v.Errors)
}
