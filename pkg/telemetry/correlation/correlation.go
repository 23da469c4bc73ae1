// Package correlation carries the id of one command run through a context,
// so its log lines and spans can be grouped.
package correlation

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

type key struct{}

// ID returns the correlation id on ctx, or "".
func ID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(key{}).(string)
	return id
}

// WithID returns ctx carrying id. A blank id leaves ctx untouched.
func WithID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key{}, id)
}

// New generates an id. Ids sort by creation time.
func New() string {
	return ulid.Make().String()
}

// Ensure returns ctx with a correlation id, generating one when missing.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := ID(ctx); id != "" {
		return ctx, id
	}
	id := New()
	return WithID(ctx, id), id
}

// Timestamp recovers the creation time of a generated id.
func Timestamp(id string) (time.Time, bool) {
	u, err := ulid.ParseStrict(id)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(u.Time()).UTC(), true
}
