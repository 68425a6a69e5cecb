package ctxstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type actor struct{ ID uint }

func TestWithFrom(t *testing.T) {
	const (
		traceKey = Key("traceId")
		actorKey = Key("actor")
	)

	ctx := With(context.Background(), traceKey, "abc")
	ctx = With(ctx, actorKey, actor{ID: 7})

	tid, ok := From[string](ctx, traceKey)
	assert.True(t, ok)
	assert.Equal(t, "abc", tid)

	assert.Equal(t, actor{ID: 7}, MustFrom[actor](ctx, actorKey))

	_, ok = From[int](ctx, traceKey)
	assert.False(t, ok, "wrong type")

	_, ok = From[string](context.Background(), traceKey)
	assert.False(t, ok, "missing")

	assert.Panics(t, func() { MustFrom[string](context.Background(), traceKey) })
}

func TestKeyDoesNotCollideWithPlainString(t *testing.T) {
	ctx := context.WithValue(context.Background(), "traceId", "plain") //nolint:staticcheck

	_, ok := From[string](ctx, Key("traceId"))
	assert.False(t, ok)
}
