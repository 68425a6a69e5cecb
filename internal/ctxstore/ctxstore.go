// Package ctxstore keeps request scoped values, such as the trace id and
// the authenticated actor, in a context under typed string keys.
package ctxstore

import (
	"context"
	"fmt"
)

type Key string

func (k Key) String() string {
	return string(k)
}

func With[T any](ctx context.Context, key Key, value T) context.Context {
	return context.WithValue(ctx, key, value)
}

// From reports false when the key is missing or holds another type.
func From[T any](ctx context.Context, key Key) (T, bool) {
	value, ok := ctx.Value(key).(T)
	return value, ok
}

// MustFrom is for values a middleware is guaranteed to have stored.
func MustFrom[T any](ctx context.Context, key Key) T {
	value, ok := From[T](ctx, key)
	if !ok {
		var zero T
		panic(fmt.Sprintf("ctxstore: %q not found or not %T", key, zero))
	}
	return value
}
