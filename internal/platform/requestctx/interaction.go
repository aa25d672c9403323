// Package requestctx carries the caller of a chat interaction through context.
package requestctx

import "context"

type interactionContextKey struct{}

// Interaction identifies who triggered a request and the locale their
// client reported.
type Interaction struct {
	UserID string
	Locale string
}

// WithInteraction stores the interaction caller in context.
func WithInteraction(ctx context.Context, in Interaction) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, interactionContextKey{}, in)
}

// FromContext returns the interaction caller stored in context, or the zero
// value when there is none.
func FromContext(ctx context.Context) Interaction {
	if ctx == nil {
		return Interaction{}
	}
	in, _ := ctx.Value(interactionContextKey{}).(Interaction)
	return in
}

// UserIDFromContext returns the chat user id stored in context.
func UserIDFromContext(ctx context.Context) string {
	return FromContext(ctx).UserID
}

// LocaleFromContext returns the caller locale stored in context.
func LocaleFromContext(ctx context.Context) string {
	return FromContext(ctx).Locale
}
