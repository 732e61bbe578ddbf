package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RedirectTarget tells clients what a notification links to.
type RedirectTarget string

const (
	RedirectAuction RedirectTarget = "auction"
	RedirectChat    RedirectTarget = "chat"
)

type Notification struct {
	ID             uuid.UUID       `json:"id"`
	Message        string          `json:"message"`
	TemplateArgs   json.RawMessage `json:"templateArgs,omitempty"`
	RedirectTarget RedirectTarget  `json:"redirectTarget"`
	RedirectID     *uuid.UUID      `json:"redirectId,omitempty"`
	IssuerID       *uuid.UUID      `json:"issuerId,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// NotificationRecipient is keyed by (NotificationID, RecipientID).
type NotificationRecipient struct {
	NotificationID uuid.UUID `json:"notificationId"`
	RecipientID    uuid.UUID `json:"recipientId"`
	IsRead         bool      `json:"isRead"`
}

// InboxItem is a notification as seen by one recipient.
type InboxItem struct {
	Notification
	IsRead bool `json:"isRead"`
}
