package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sqlc-dev/pqtype"
)

type Auction struct {
	ID              uuid.UUID
	AuctioneerID    uuid.UUID
	Title           string
	StartingPrice   decimal.Decimal
	MinBidIncrement decimal.Decimal
	StartTime       time.Time
	EndTime         time.Time
	WinnerID        uuid.NullUUID
	ClosedAt        sql.NullTime
	CreatedAt       time.Time
}

type Bid struct {
	ID         uuid.UUID
	AuctionID  uuid.UUID
	BidderID   uuid.UUID
	Amount     decimal.Decimal
	PlacedAt   time.Time
	IsAccepted bool
}

type OutboxMessage struct {
	ID          uuid.UUID
	Type        string
	Content     []byte
	CreatedAt   time.Time
	ProcessedAt sql.NullTime
	Error       sql.NullString
	Attempts    int32
}

type Notification struct {
	ID             uuid.UUID
	Message        string
	TemplateArgs   pqtype.NullRawMessage
	RedirectTarget string
	RedirectID     uuid.NullUUID
	IssuerID       uuid.NullUUID
	CreatedAt      time.Time
}

type NotificationRecipient struct {
	NotificationID uuid.UUID
	RecipientID    uuid.UUID
	IsRead         bool
	ReadAt         sql.NullTime
}

type Chat struct {
	ID           uuid.UUID
	AuctionID    uuid.NullUUID
	FirstUserID  uuid.UUID
	SecondUserID uuid.UUID
	CreatedAt    time.Time
}

type Message struct {
	ID       uuid.UUID
	ChatID   uuid.UUID
	SenderID uuid.UUID
	Text     string
	SentAt   time.Time
}
