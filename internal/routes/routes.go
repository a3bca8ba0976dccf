package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/handlers"
	"github.com/kinhub/kinhub/internal/models"
)

// Handlers bundles every route handler the server mounts.
type Handlers struct {
	Auth          *handlers.AuthHandler
	Families      *handlers.FamilyHandler
	Members       *handlers.MemberHandler
	Memories      *handlers.MemoryHandler
	Albums        *handlers.AlbumHandler
	Media         *handlers.MediaHandler
	Events        *handlers.EventHandler
	Messages      *handlers.MessageHandler
	Notifications *handlers.NotificationHandler
	Invitations   *handlers.InvitationHandler
	Drive         *handlers.DriveHandler
	LiveKit       *handlers.LiveKitHandler
	Website       *handlers.WebsiteHandler
	Admin         *handlers.AdminHandler
	Email         *handlers.EmailHandler
	WS            *handlers.WSHandler
}

// Register mounts the whole API under /api plus the websocket endpoint and
// the static uploads directory.
func Register(app *fiber.App, h *Handlers, jwtSecret, uploadsDir string) {
	app.Static("/uploads", uploadsDir)

	authed := auth.Middleware(jwtSecret)

	api := app.Group("/api")

	ar := api.Group("/auth")
	ar.Post("/register", h.Auth.Register)
	ar.Post("/login", h.Auth.Login)
	ar.Post("/refresh", h.Auth.Refresh)
	ar.Post("/logout", authed, h.Auth.Logout)
	ar.Get("/me", authed, h.Auth.Me)
	ar.Put("/me", authed, h.Auth.UpdateMe)

	fam := api.Group("/families", authed)
	fam.Post("/", h.Families.Create)
	fam.Get("/", h.Families.Mine)
	fam.Post("/join", h.Families.Join)
	fam.Get("/:id", h.Families.Get)
	fam.Put("/:id", h.Families.Update)
	fam.Delete("/:id", h.Families.Delete)
	fam.Get("/:id/members", h.Families.Members)
	fam.Post("/:id/regenerate-passcode", h.Families.RegeneratePasscode)

	mem := api.Group("/members", authed)
	mem.Post("/", h.Members.Create)
	mem.Get("/family/:familyID", h.Members.ListByFamily)
	mem.Put("/:id", h.Members.Update)
	mem.Delete("/:id", h.Members.Delete)

	mm := api.Group("/memories", authed)
	mm.Post("/", h.Memories.Create)
	mm.Get("/family/:familyID", h.Memories.ListByFamily)
	mm.Get("/:id", h.Memories.Get)
	mm.Delete("/:id", h.Memories.Delete)

	al := api.Group("/albums", authed)
	al.Post("/", h.Albums.Create)
	al.Post("/:id/media", h.Albums.AddMedia)
	al.Get("/family/:familyID", h.Albums.ListByFamily)
	al.Get("/:id", h.Albums.Get)
	al.Delete("/:id", h.Albums.Delete)
	al.Delete("/:id/media/:index", h.Albums.RemoveMedia)

	md := api.Group("/media", authed)
	md.Post("/upload", h.Media.Upload)
	md.Get("/signed-url", h.Media.SignedURL)

	api.Post("/s3-to-drive/migrate", authed, h.Media.MigrateToDrive)

	ev := api.Group("/events", authed)
	ev.Post("/", h.Events.Create)
	ev.Get("/family/:familyID", h.Events.ListByFamily)
	ev.Get("/:id", h.Events.Get)
	ev.Put("/:id", h.Events.Update)
	ev.Delete("/:id", h.Events.Delete)

	ms := api.Group("/messages", authed)
	ms.Post("/", h.Messages.Send)
	ms.Get("/family/:familyID", h.Messages.ListByFamily)

	nt := api.Group("/notifications", authed)
	nt.Get("/", h.Notifications.List)
	nt.Put("/read-all", h.Notifications.MarkAllRead)
	nt.Put("/:id/read", h.Notifications.MarkRead)

	inv := api.Group("/invitations", authed)
	inv.Post("/", h.Invitations.Create)
	inv.Post("/accept", h.Invitations.Accept)

	gd := api.Group("/google-drive")
	gd.Get("/auth-url", authed, h.Drive.AuthURL)
	gd.Get("/callback", h.Drive.Callback) // arrives from Google, no bearer
	gd.Delete("/disconnect", authed, h.Drive.Disconnect)
	gd.Get("/status", authed, h.Drive.Status)

	lk := api.Group("/livekit", authed)
	lk.Post("/token", h.LiveKit.Token)
	lk.Post("/rooms", h.LiveKit.CreateRoom)
	lk.Get("/rooms/:familyID", h.LiveKit.ListRooms)
	lk.Delete("/rooms/:familyID/:name", h.LiveKit.RemoveRoom)

	wa := api.Group("/website-admin", authed)
	wa.Post("/generate", h.Website.Generate)
	wa.Get("/:familyID", h.Website.Get)
	wa.Put("/:familyID/publish", h.Website.Publish)

	ad := api.Group("/admin", authed, auth.RequireRole(models.RoleSuperAdmin))
	ad.Get("/users", h.Admin.ListUsers)
	ad.Put("/users/:id/role", h.Admin.SetRole)
	ad.Delete("/users/:id", h.Admin.DeleteUser)
	ad.Get("/stats", h.Admin.Stats)

	em := api.Group("/email", authed, auth.RequireRole(models.RoleAdmin, models.RoleSuperAdmin))
	em.Post("/test", h.Email.SendTest)

	app.Get("/ws", h.WS.Upgrade, h.WS.Serve())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}
