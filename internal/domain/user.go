package domain

import (
	"fmt"
	"time"
)

// User maps an external messaging-platform account to an internal id.
// Users are created lazily on first interaction.
type User struct {
	ID         int64
	ExternalID string
	CreatedAt  time.Time
}

// EventKind is the interaction signal a user attaches to an article.
type EventKind string

const (
	EventLike    EventKind = "like"
	EventDislike EventKind = "dislike"
)

// ParseEventKind validates a raw event type string.
func ParseEventKind(raw string) (EventKind, error) {
	switch EventKind(raw) {
	case EventLike, EventDislike:
		return EventKind(raw), nil
	}
	return "", fmt.Errorf("event type must be like|dislike, got %q", raw)
}

// UserEvent is an append-only interaction record. The same (user, article)
// pair may appear multiple times; readers reconcile repeats.
type UserEvent struct {
	ID         int64
	UserID     int64
	ArticleID  int64
	Kind       EventKind
	Value      int
	OccurredAt time.Time
}
