package chat

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/models"
)

// MaxMessageRunes bounds the length of a message after trimming.
const MaxMessageRunes = 2000

//go:generate mockgen -source=app.go -destination=mock_app_test.go -package=chat

// ChatRepository defines what the app layer needs from the repository
type ChatRepository interface {
	GetChat(ctx context.Context, chatID uuid.UUID) (*models.Chat, error)
	CreateChat(ctx context.Context, chat models.Chat) (*models.Chat, error)
	SendMessage(ctx context.Context, chat models.Chat, msg models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, chatID uuid.UUID, limit int32) ([]models.Message, error)
}

type App struct {
	repo  ChatRepository
	clock clockwork.Clock
}

func NewApp(repo ChatRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// CreateChat opens a conversation between two distinct users, optionally
// about an auction.
func (a *App) CreateChat(ctx context.Context, firstUserID, secondUserID uuid.UUID, auctionID *uuid.UUID) (*models.Chat, error) {
	if firstUserID == uuid.Nil || secondUserID == uuid.Nil {
		return nil, auctionerrors.Invalid("invalid_chat", "both participants are required")
	}
	if firstUserID == secondUserID {
		return nil, auctionerrors.Invalid("invalid_chat", "a chat needs two different participants")
	}

	chat, err := a.repo.CreateChat(ctx, models.Chat{
		ID:           uuid.New(),
		AuctionID:    auctionID,
		FirstUserID:  firstUserID,
		SecondUserID: secondUserID,
		CreatedAt:    a.clock.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("chat_id", chat.ID.String()).
		Str("first_user_id", firstUserID.String()).
		Str("second_user_id", secondUserID.String()).
		Msg("chat created")
	return chat, nil
}

// SendMessage stores text from senderID in the chat and announces it with a
// MessageSent event.
func (a *App) SendMessage(ctx context.Context, senderID, chatID uuid.UUID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, auctionerrors.ErrEmptyMessage
	}
	if utf8.RuneCountInString(text) > MaxMessageRunes {
		return nil, auctionerrors.ErrMessageTooLong
	}

	chat, err := a.memberChat(ctx, senderID, chatID)
	if err != nil {
		return nil, err
	}

	return a.repo.SendMessage(ctx, *chat, models.Message{
		ID:       uuid.New(),
		ChatID:   chat.ID,
		SenderID: senderID,
		Text:     text,
		SentAt:   a.clock.Now().UTC(),
	})
}

// CanJoin reports whether userID may subscribe to the chat's room.
func (a *App) CanJoin(ctx context.Context, userID, chatID uuid.UUID) error {
	_, err := a.memberChat(ctx, userID, chatID)
	return err
}

// History returns up to limit messages, oldest first, to a participant.
func (a *App) History(ctx context.Context, userID, chatID uuid.UUID, limit int) ([]models.Message, error) {
	if _, err := a.memberChat(ctx, userID, chatID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return a.repo.ListMessages(ctx, chatID, int32(limit))
}

func (a *App) memberChat(ctx context.Context, userID, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := a.repo.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, auctionerrors.ErrNotChatMember
	}
	return chat, nil
}
