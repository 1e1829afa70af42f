package access

// User is the registry record tracked per Telegram identity. Created on
// first contact, never deleted by the bot.
type User struct {
	ID                int64  `db:"id"`
	TelegramID        int64  `db:"telegram_id"`
	Username          string `db:"username"`
	Subscribed        bool   `db:"is_subscribed"`
	FreeFiguresOpened int    `db:"free_figures_opened"`
}

// Decision is the outcome of an entitlement check. Count is the number of
// distinct figures charged against the quota after the call; it is nil when
// the access was not metered (subscriber, or an already granted figure).
type Decision struct {
	Allowed bool
	Count   *int
}

// Stats summarises registry state for the admin panel.
type Stats struct {
	Users       int64 `db:"users"`
	Subscribers int64 `db:"subscribers"`
	Grants      int64 `db:"grants"`
}
