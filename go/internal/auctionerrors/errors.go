package auctionerrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the bidding, chat and notification
// apps unwraps to exactly one of these.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrPermission = errors.New("permission denied")
	ErrConflict   = errors.New("conflict")
	ErrTransient  = errors.New("transient infrastructure failure")
)

// Error is a coded business error. Code is the stable reason string sent to
// clients in ErrorOccurred payloads.
type Error struct {
	Kind    error
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Bid placement / acceptance
var (
	ErrBidTooLow         = &Error{Kind: ErrValidation, Code: "bid_too_low", Message: "bid amount must exceed the current price"}
	ErrIncrementTooSmall = &Error{Kind: ErrValidation, Code: "increment_too_small", Message: "bid increment is below the auction minimum"}
	ErrSelfBid           = &Error{Kind: ErrValidation, Code: "self_bid", Message: "auctioneer cannot bid on their own auction"}
	ErrAuctionNotFound   = &Error{Kind: ErrNotFound, Code: "auction_not_found", Message: "auction not found"}
	ErrBidNotFound       = &Error{Kind: ErrNotFound, Code: "bid_not_found", Message: "bid not found"}
	ErrNotAuctioneer     = &Error{Kind: ErrPermission, Code: "not_auctioneer", Message: "only the auctioneer can perform this action"}
	ErrAuctionInactive   = &Error{Kind: ErrConflict, Code: "auction_inactive", Message: "auction is no longer active"}
	ErrAuctionAlreadyWon = &Error{Kind: ErrConflict, Code: "auction_already_won", Message: "auction already has a winner"}
	ErrInvalidAuction    = &Error{Kind: ErrValidation, Code: "invalid_auction", Message: "invalid auction"}
	ErrAuctionHasBids    = &Error{Kind: ErrConflict, Code: "auction_has_bids", Message: "auction with bids cannot be deleted"}
	ErrInvalidAmount     = &Error{Kind: ErrValidation, Code: "invalid_amount", Message: "bid amount must be positive"}
)

// Chat
var (
	ErrChatNotFound   = &Error{Kind: ErrNotFound, Code: "chat_not_found", Message: "chat not found"}
	ErrNotChatMember  = &Error{Kind: ErrPermission, Code: "not_chat_member", Message: "user is not a participant of this chat"}
	ErrEmptyMessage   = &Error{Kind: ErrValidation, Code: "empty_message", Message: "message text is empty"}
	ErrMessageTooLong = &Error{Kind: ErrValidation, Code: "message_too_long", Message: "message text is too long"}
)

// Notifications
var (
	ErrNotificationNotFound = &Error{Kind: ErrNotFound, Code: "notification_not_found", Message: "notification not found"}
)

// Invalid wraps a free-form validation failure.
func Invalid(code, format string, args ...any) error {
	return &Error{Kind: ErrValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Detail returns an error with sentinel's kind and code and a specific
// message. errors.Is still matches sentinel.
func Detail(sentinel *Error, format string, args ...any) error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: fmt.Sprintf(format, args...), Err: sentinel}
}

// Transient marks err as a storage or transport failure. Errors that already
// carry a kind are returned unchanged.
func Transient(msg string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != nil {
		return err
	}
	return &Error{Kind: ErrTransient, Code: "transient", Message: msg, Err: err}
}

// KindOf returns the kind sentinel err unwraps to, or nil.
func KindOf(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrPermission, ErrConflict, ErrTransient} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// Code returns the reason code carried by err, "internal" for uncoded errors.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal"
}

// KindName is the wire name of err's kind.
func KindName(err error) string {
	switch KindOf(err) {
	case ErrValidation:
		return "ValidationError"
	case ErrNotFound:
		return "NotFoundError"
	case ErrPermission:
		return "PermissionError"
	case ErrConflict:
		return "ConflictError"
	case ErrTransient:
		return "TransientInfraError"
	default:
		return "InternalError"
	}
}
