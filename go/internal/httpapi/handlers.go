package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/mcdev12/auctionhouse/go/internal/auctionerrors"
	"github.com/mcdev12/auctionhouse/go/internal/bidding"
	"github.com/mcdev12/auctionhouse/go/internal/identity"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  string `json:"code,omitempty"`
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch auctionerrors.KindOf(err) {
	case auctionerrors.ErrValidation:
		return http.StatusBadRequest
	case auctionerrors.ErrNotFound:
		return http.StatusNotFound
	case auctionerrors.ErrPermission:
		return http.StatusForbidden
	case auctionerrors.ErrConflict:
		return http.StatusConflict
	case auctionerrors.ErrTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{
		Error: err.Error(),
		Kind:  auctionerrors.KindName(err),
		Code:  auctionerrors.Code(err),
	}
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		resp.Error = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	writeError(c, auctionerrors.Invalid("invalid_request", "%s", msg))
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the id set by the auth middleware.
func caller(c *gin.Context) uuid.UUID {
	id, _ := identity.UserID(c)
	return id
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func (s *Server) handleWebsocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := s.deps.Auth.Resolve(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: "authentication required"})
			return
		}
		if err := s.deps.Websocket.Serve(c.Writer, c.Request, userID); err != nil {
			// the upgrader already replied to the client
			log.Warn().Err(err).Str("user_id", userID.String()).Msg("websocket upgrade failed")
		}
	}
}

type placeBidRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (s *Server) handlePlaceBid() gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID, ok := pathID(c)
		if !ok {
			return
		}
		var req placeBidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid bid")
			return
		}

		bid, err := s.deps.Bids.PlaceBid(c.Request.Context(), caller(c), auctionID, req.Amount)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, bid)
	}
}

func (s *Server) handleAcceptBid() gin.HandlerFunc {
	return func(c *gin.Context) {
		bidID, ok := pathID(c)
		if !ok {
			return
		}

		bid, err := s.deps.Bids.AcceptBid(c.Request.Context(), caller(c), bidID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, bid)
	}
}

func (s *Server) handleCreateAuction() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bidding.CreateAuctionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid auction")
			return
		}

		auction, err := s.deps.Bids.CreateAuction(c.Request.Context(), caller(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, auction)
	}
}

func (s *Server) handleDeleteAuction() gin.HandlerFunc {
	return func(c *gin.Context) {
		auctionID, ok := pathID(c)
		if !ok {
			return
		}
		if err := s.deps.Bids.DeleteAuction(c.Request.Context(), caller(c), auctionID); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type createChatRequest struct {
	ParticipantID uuid.UUID  `json:"participantId"`
	AuctionID     *uuid.UUID `json:"auctionId,omitempty"`
}

func (s *Server) handleCreateChat() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid chat")
			return
		}

		chat, err := s.deps.Chats.CreateChat(c.Request.Context(), caller(c), req.ParticipantID, req.AuctionID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, chat)
	}
}

func (s *Server) handleChatHistory() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID, ok := pathID(c)
		if !ok {
			return
		}

		messages, err := s.deps.Chats.History(c.Request.Context(), caller(c), chatID, queryLimit(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

func (s *Server) handleListNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := s.deps.Notifications.List(c.Request.Context(), caller(c), queryLimit(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}

func (s *Server) handleUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := s.deps.Notifications.UnreadCount(c.Request.Context(), caller(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func (s *Server) handleMarkAsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		notificationID, ok := pathID(c)
		if !ok {
			return
		}

		count, err := s.deps.Notifications.MarkAsRead(c.Request.Context(), caller(c), notificationID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		event := log.Debug()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	}
}
