package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a two-party conversation, usually about an auction.
type Chat struct {
	ID           uuid.UUID  `json:"id"`
	AuctionID    *uuid.UUID `json:"auctionId,omitempty"`
	FirstUserID  uuid.UUID  `json:"firstUserId"`
	SecondUserID uuid.UUID  `json:"secondUserId"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// HasParticipant reports whether userID is one of the two chat members.
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	return c.FirstUserID == userID || c.SecondUserID == userID
}

// Other returns the participant that is not userID.
func (c *Chat) Other(userID uuid.UUID) uuid.UUID {
	if c.FirstUserID == userID {
		return c.SecondUserID
	}
	return c.FirstUserID
}

type Message struct {
	ID       uuid.UUID `json:"id"`
	ChatID   uuid.UUID `json:"chatId"`
	SenderID uuid.UUID `json:"senderId"`
	Text     string    `json:"text"`
	SentAt   time.Time `json:"sentAt"`
}
