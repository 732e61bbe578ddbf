package realtime

import "github.com/google/uuid"

// Room names. The hub treats them as opaque keys.
const FeedRoom = "feed"

func AuctionRoom(auctionID uuid.UUID) string { return "auction:" + auctionID.String() }

func ChatRoom(chatID uuid.UUID) string { return "chat:" + chatID.String() }

// UserRoom is the private channel every connection of a user joins on
// connect.
func UserRoom(userID uuid.UUID) string { return "user:" + userID.String() }
