package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/ws"
)

// WSHandler upgrades /ws?token=&familyId= connections and parks them in the
// family's hub room. Auth rides in the query string because browser
// WebSocket clients cannot set headers.
type WSHandler struct {
	Hub       *ws.Hub
	Families  *services.FamilyService
	JWTSecret string
}

// Upgrade is plain fiber middleware: it authenticates before the protocol
// switch so rejects are proper HTTP statuses.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	claims, err := auth.ParseAccessToken(c.Query("token"), h.JWTSecret)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	familyID, err := primitive.ObjectIDFromHex(c.Query("familyId"))
	if err != nil {
		return fiber.ErrBadRequest
	}
	if _, err := h.Families.RequireMember(context.Background(), familyID, userID); err != nil {
		return fiber.ErrForbidden
	}
	c.Locals("ws_user_id", claims.UserID)
	c.Locals("ws_family_id", familyID.Hex())
	return c.Next()
}

// Serve runs inside the websocket goroutine after the upgrade.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("ws_user_id").(string)
		familyID, _ := conn.Locals("ws_family_id").(string)
		client := ws.NewClient(conn, userID, familyID)
		h.Hub.Join(familyID, client)
		go client.WritePump()
		client.ReadPump(h.Hub)
	})
}
