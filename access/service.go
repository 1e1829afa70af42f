package access

import (
	"context"
	"fmt"
	"log/slog"

	"latinbot/core/logger"
)

// DefaultQuotaLimit is the number of distinct figures a non-subscribed user
// may open for free.
const DefaultQuotaLimit = 5

// Tx exposes the per-user entitlement state inside one atomic unit of work.
// The user row is locked for the duration of the callback, so the
// check-then-grant sequence cannot race with a concurrent open by the same
// user.
type Tx interface {
	User() User
	HasGrant(figureID int64) (bool, error)
	GrantCount() (int, error)
	AddGrant(figureID int64) error
	SetFreeFiguresOpened(n int) error
}

// Store persists users and access grants.
type Store interface {
	// GetOrCreateUser upserts the registry record for a Telegram identity.
	// Concurrent first contact must not produce duplicate rows.
	GetOrCreateUser(ctx context.Context, telegramID int64, username string) (User, error)
	// WithUserLock runs fn holding an exclusive lock on the user row,
	// creating the user first if absent. Returning an error rolls the
	// whole unit back.
	WithUserLock(ctx context.Context, telegramID int64, fn func(Tx) error) error
	// Stats reports registry totals.
	Stats(ctx context.Context) (Stats, error)
}

// Service implements the user registry and the entitlement gate.
type Service struct {
	store Store
	limit int
}

// NewService builds the service; limit <= 0 falls back to DefaultQuotaLimit.
func NewService(store Store, limit int) *Service {
	if limit <= 0 {
		limit = DefaultQuotaLimit
	}
	return &Service{store: store, limit: limit}
}

// QuotaLimit returns the configured free-tier limit.
func (s *Service) QuotaLimit() int { return s.limit }

// GetOrCreateUser looks up the user by Telegram identity, inserting a fresh
// record with zeroed counters on first contact.
func (s *Service) GetOrCreateUser(ctx context.Context, telegramID int64, username string) (User, error) {
	u, err := s.store.GetOrCreateUser(ctx, telegramID, username)
	if err != nil {
		return User{}, fmt.Errorf("access: get or create user: %w", err)
	}
	return u, nil
}

// CheckAndRegisterAccess decides whether the user may open the figure and
// charges a quota slot when needed. The charge is idempotent per figure:
// reopening an already granted figure is always free. Subscribers bypass
// metering entirely.
func (s *Service) CheckAndRegisterAccess(ctx context.Context, telegramID, figureID int64) (Decision, error) {
	var d Decision
	err := s.store.WithUserLock(ctx, telegramID, func(tx Tx) error {
		if tx.User().Subscribed {
			d = Decision{Allowed: true}
			return nil
		}

		granted, err := tx.HasGrant(figureID)
		if err != nil {
			return err
		}
		if granted {
			d = Decision{Allowed: true}
			return nil
		}

		count, err := tx.GrantCount()
		if err != nil {
			return err
		}
		if count >= s.limit {
			d = Decision{Allowed: false, Count: &count}
			return nil
		}

		if err := tx.AddGrant(figureID); err != nil {
			return err
		}
		next := count + 1
		if err := tx.SetFreeFiguresOpened(next); err != nil {
			return err
		}
		d = Decision{Allowed: true, Count: &next}
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("access: check and register: %w", err)
	}

	attrs := []slog.Attr{
		slog.String("event", "access.check"),
		slog.Int64("user_id", telegramID),
		slog.Int64("figure_id", figureID),
		slog.Bool("allowed", d.Allowed),
		slog.Int("quota_limit", s.limit),
	}
	if d.Count != nil {
		attrs = append(attrs, slog.Int("granted", *d.Count))
	}
	if logger.SVCAccess != nil {
		logger.SVCAccess.LogAttrs(ctx, slog.LevelDebug, "access checked", attrs...)
	}
	return d, nil
}

// Stats reports registry totals for the admin panel.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("access: stats: %w", err)
	}
	return st, nil
}
