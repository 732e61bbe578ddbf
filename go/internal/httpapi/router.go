// Package httpapi exposes the bid engine, chats and notification inbox over
// HTTP and upgrades websocket connections.
package httpapi

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/auctionhouse/go/internal/bidding"
	"github.com/mcdev12/auctionhouse/go/internal/models"
	"github.com/mcdev12/auctionhouse/go/internal/realtime"
)

//go:generate mockgen -source=router.go -destination=mock_router_test.go -package=httpapi

type BidService interface {
	PlaceBid(ctx context.Context, bidderID, auctionID uuid.UUID, amount decimal.Decimal) (*models.Bid, error)
	AcceptBid(ctx context.Context, callerID, bidID uuid.UUID) (*models.Bid, error)
	CreateAuction(ctx context.Context, auctioneerID uuid.UUID, req bidding.CreateAuctionRequest) (*models.Auction, error)
	DeleteAuction(ctx context.Context, callerID, auctionID uuid.UUID) error
}

type ChatService interface {
	CreateChat(ctx context.Context, firstUserID, secondUserID uuid.UUID, auctionID *uuid.UUID) (*models.Chat, error)
	History(ctx context.Context, userID, chatID uuid.UUID, limit int) ([]models.Message, error)
}

type NotificationService interface {
	List(ctx context.Context, recipientID uuid.UUID, limit int) ([]models.InboxItem, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkAsRead(ctx context.Context, recipientID, notificationID uuid.UUID) (int64, error)
}

// Authenticator resolves the caller of a request.
type Authenticator interface {
	Resolve(r *http.Request) (uuid.UUID, error)
	Middleware() gin.HandlerFunc
}

// WebsocketServer upgrades an authenticated request.
type WebsocketServer interface {
	Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error
}

type Deps struct {
	Auth          Authenticator
	Bids          BidService
	Chats         ChatService
	Notifications NotificationService
	Websocket     WebsocketServer
	Hub           *realtime.Hub
	// OutboxHealth serves GET /health/outbox when set.
	OutboxHealth http.Handler
}

type Server struct {
	deps Deps
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Deps) *gin.Engine {
	s := &Server{deps: deps}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if deps.OutboxHealth != nil {
		router.GET("/health/outbox", gin.WrapH(deps.OutboxHealth))
	}

	router.GET("/ws", s.handleWebsocket())
	router.GET("/ws/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, deps.Hub.Stats())
	})

	api := router.Group("/api/v1")
	api.Use(deps.Auth.Middleware())
	{
		auctions := api.Group("/auctions")
		{
			auctions.POST("", s.handleCreateAuction())
			auctions.DELETE("/:id", s.handleDeleteAuction())
			auctions.POST("/:id/bids", s.handlePlaceBid())
		}

		api.POST("/bids/:id/accept", s.handleAcceptBid())

		chats := api.Group("/chats")
		{
			chats.POST("", s.handleCreateChat())
			chats.GET("/:id/messages", s.handleChatHistory())
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", s.handleListNotifications())
			notifications.GET("/unread-count", s.handleUnreadCount())
			notifications.PUT("/:id/read", s.handleMarkAsRead())
		}
	}

	return router
}
