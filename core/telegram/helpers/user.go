package helpers

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// EnsureUser resolves the sender of the current update into a domain entity
// via a registry implementing GetOrCreateUser. The generic type T allows
// different bots to supply their own user model.
func EnsureUser[T any](
	ctx context.Context,
	registry interface {
		GetOrCreateUser(context.Context, int64, string) (T, error)
	},
	c tele.Context,
) (T, error) {
	var zero T
	sender := c.Sender()
	if registry == nil || sender == nil {
		return zero, nil
	}
	return registry.GetOrCreateUser(ctx, sender.ID, sender.Username)
}
