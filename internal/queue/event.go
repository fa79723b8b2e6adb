// Package queue carries rating events over RabbitMQ: a publisher used by
// the rating write path and a consumer that appends them to a log file.
package queue

import (
	"fmt"
	"time"
)

const RatingQueueName = "rating.events"

type EventType string

const (
	RatingSubmitted EventType = "rating.submitted"
	RatingUpdated   EventType = "rating.updated"
)

// RatingEvent is published after a rating is created or changed. It holds
// enough for downstream consumers to log or aggregate without querying
// the database.
type RatingEvent struct {
	Type       EventType `json:"type"`
	RatingID   uint64    `json:"rating_id"`
	UserID     uint64    `json:"user_id"`
	StoreID    uint64    `json:"store_id"`
	Value      int       `json:"rating_value"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Line renders the event as a single human-friendly log line.
func (ev RatingEvent) Line() string {
	verb := "Rating submitted"
	if ev.Type == RatingUpdated {
		verb = "Rating updated"
	}
	return fmt.Sprintf("[%s] %s | rating_id=%d | user_id=%d | store_id=%d | value=%d\n",
		ev.OccurredAt.UTC().Format(time.RFC3339), verb, ev.RatingID, ev.UserID, ev.StoreID, ev.Value)
}
