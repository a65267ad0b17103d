package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// threadSeparator joins the two participant ids. It never occurs in a UUID.
const threadSeparator = "_"

// DeriveThreadID returns the canonical id of the conversation between a and b.
// The smaller id (byte-wise) always comes first, so the result does not depend
// on argument order.
func DeriveThreadID(a, b string) (string, error) {
	if a == "" || b == "" {
		return "", ErrEmptyParticipant
	}
	if a == b {
		return "", ErrSameParticipant
	}
	if a > b {
		a, b = b, a
	}
	return a + threadSeparator + b, nil
}

// ParseThreadID splits a canonical thread id into its two participants.
func ParseThreadID(id string) (string, string, error) {
	a, b, ok := strings.Cut(id, threadSeparator)
	if !ok || a == "" || b == "" || strings.Contains(b, threadSeparator) || a >= b {
		return "", "", ErrMalformedThreadID
	}
	return a, b, nil
}

// ThreadParticipants parses a thread id whose participants are account UUIDs.
func ThreadParticipants(id string) (uuid.UUID, uuid.UUID, error) {
	a, b, err := ParseThreadID(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	u1, err := uuid.Parse(a)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrMalformedThreadID
	}
	u2, err := uuid.Parse(b)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrMalformedThreadID
	}
	return u1, u2, nil
}

type Message struct {
	ID       uuid.UUID `json:"id"`
	ThreadID string    `json:"thread_id"`
	SenderID uuid.UUID `json:"sender_id"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sent_at"`
}

type ThreadSummary struct {
	ID          string    `json:"id"`
	LastMessage string    `json:"last_message"`
	LastSentAt  time.Time `json:"last_sent_at"`
	// Joined fields for frontend
	OtherUserID   uuid.UUID `json:"other_user_id"`
	OtherUserName string    `json:"other_user_name"`
}
