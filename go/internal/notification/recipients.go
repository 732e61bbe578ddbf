package notification

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/mcdev12/auctionhouse/go/internal/events"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/outbox"
)

// idNamespace seeds notification ids derived from outbox event ids.
var idNamespace = uuid.MustParse("6f1c9a52-4a47-4c0e-9b7d-3f7b8e0c2d14")

// Message templates. Placeholders are filled from TemplateArgs by clients.
const (
	MessageBidPlaced    = "New bid of {amount} on {auction}"
	MessageBidAccepted  = "Your bid of {amount} was accepted"
	MessageAuctionEnded = "Auction {auction} ended at {finalPrice}"
	MessageNewMessage   = "New message: {preview}"
)

const previewRunes = 80

// Fanout is a notification ready to persist with its recipient set.
type Fanout struct {
	Notification models.Notification
	Recipients   []uuid.UUID
}

// NotificationID is the id of the notification an outbox event produces.
// Redelivering the same event yields the same id.
func NotificationID(eventID uuid.UUID) uuid.UUID {
	return uuid.NewSHA1(idNamespace, eventID[:])
}

// Compose computes the notification and recipients for an event. It returns
// false when the event does not notify anyone.
func Compose(e outbox.Event) (Fanout, bool) {
	n := models.Notification{
		ID:        NotificationID(e.ID),
		CreatedAt: e.CreatedAt.UTC(),
	}

	var recipients []uuid.UUID
	switch p := e.Payload.(type) {
	case events.BidPlacedPayload:
		recipients = []uuid.UUID{p.AuctioneerID}
		if p.PreviousHighestBidderID != nil && *p.PreviousHighestBidderID != p.BidderID {
			recipients = append(recipients, *p.PreviousHighestBidderID)
		}
		n.Message = MessageBidPlaced
		n.TemplateArgs = args(map[string]string{"amount": p.Amount.String(), "auction": p.AuctionID.String()})
		n.RedirectTarget = models.RedirectAuction
		n.RedirectID = &p.AuctionID
		n.IssuerID = &p.BidderID

	case events.BidAcceptedPayload:
		recipients = []uuid.UUID{p.WinnerID}
		n.Message = MessageBidAccepted
		n.TemplateArgs = args(map[string]string{"amount": p.Amount.String(), "auction": p.AuctionID.String()})
		n.RedirectTarget = models.RedirectAuction
		n.RedirectID = &p.AuctionID
		n.IssuerID = &p.AuctioneerID

	case events.AuctionEndedPayload:
		recipients = []uuid.UUID{p.AuctioneerID}
		if p.WinnerID != nil {
			recipients = append(recipients, *p.WinnerID)
		}
		n.Message = MessageAuctionEnded
		n.TemplateArgs = args(map[string]string{"finalPrice": p.FinalPrice.String(), "auction": p.AuctionID.String()})
		n.RedirectTarget = models.RedirectAuction
		n.RedirectID = &p.AuctionID

	case events.MessageSentPayload:
		recipients = []uuid.UUID{p.RecipientID}
		n.Message = MessageNewMessage
		n.TemplateArgs = args(map[string]string{"preview": preview(p.Text), "chat": p.ChatID.String()})
		n.RedirectTarget = models.RedirectChat
		n.RedirectID = &p.ChatID
		n.IssuerID = &p.SenderID

	default:
		return Fanout{}, false
	}

	recipients = dedupe(recipients)
	if len(recipients) == 0 {
		return Fanout{}, false
	}
	return Fanout{Notification: n, Recipients: recipients}, true
}

func args(m map[string]string) json.RawMessage {
	b, _ := json.Marshal(m)
	return b
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewRunes {
		return text
	}
	return string(r[:previewRunes]) + "…"
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
