package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/livekit"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/services"
	"github.com/kinhub/kinhub/internal/utils"
)

type LiveKitHandler struct {
	Minter   *livekit.TokenMinter
	Rooms    livekit.RoomStore
	Users    *repository.UserRepo
	Families *services.FamilyService
	Host     string
}

type livekitTokenRequest struct {
	FamilyID string `json:"familyId"`
	Room     string `json:"room"`
}

// POST /api/livekit/token
func (h *LiveKitHandler) Token(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req livekitTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Room == "" {
		return apperr.Validation("room is required")
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		return apperr.Validation("invalid familyId")
	}
	if _, err := h.Families.RequireMember(c.Context(), familyID, userID); err != nil {
		return err
	}
	user, err := h.Users.FindByID(c.Context(), userID)
	if err != nil {
		return apperr.NotFound("user")
	}
	// rooms are namespaced by family so two families can both hold "kitchen"
	roomName := familyID.Hex() + ":" + req.Room
	token, err := h.Minter.Mint(roomName, userID.Hex(), user.Name)
	if err != nil {
		return apperr.Internal(err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, fiber.Map{"token": token, "host": h.Host, "room": roomName})
}

type createRoomRequest struct {
	FamilyID string `json:"familyId"`
	Name     string `json:"name"`
}

// POST /api/livekit/rooms
func (h *LiveKitHandler) CreateRoom(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	var req createRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Name == "" {
		return apperr.Validation("room name is required")
	}
	familyID, err := primitive.ObjectIDFromHex(req.FamilyID)
	if err != nil {
		return apperr.Validation("invalid familyId")
	}
	if _, err := h.Families.RequireMember(c.Context(), familyID, userID); err != nil {
		return err
	}
	room := livekit.Room{
		Name:      req.Name,
		FamilyID:  familyID.Hex(),
		CreatedBy: userID.Hex(),
		CreatedAt: time.Now().UTC(),
	}
	if err := h.Rooms.Add(c.Context(), room); err != nil {
		return apperr.Upstream("room registry unavailable", err)
	}
	return utils.JSONSuccess(c, fiber.StatusCreated, room)
}

// GET /api/livekit/rooms/:familyID
func (h *LiveKitHandler) ListRooms(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "familyID")
	if err != nil {
		return err
	}
	if _, err := h.Families.RequireMember(c.Context(), familyID, userID); err != nil {
		return err
	}
	rooms, err := h.Rooms.ListByFamily(c.Context(), familyID.Hex())
	if err != nil {
		return apperr.Upstream("room registry unavailable", err)
	}
	return utils.JSONSuccess(c, fiber.StatusOK, rooms)
}

// DELETE /api/livekit/rooms/:familyID/:name
func (h *LiveKitHandler) RemoveRoom(c *fiber.Ctx) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	familyID, err := objectIDParam(c, "familyID")
	if err != nil {
		return err
	}
	name := c.Params("name")
	if name == "" {
		return apperr.Validation("room name is required")
	}
	if _, err := h.Families.RequireMember(c.Context(), familyID, userID); err != nil {
		return err
	}
	if err := h.Rooms.Remove(c.Context(), familyID.Hex(), name); err != nil {
		return apperr.Upstream("room registry unavailable", err)
	}
	return utils.JSONMessage(c, fiber.StatusOK, "room removed")
}
