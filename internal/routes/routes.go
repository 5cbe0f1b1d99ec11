package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/oneonone-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

type Handlers struct {
	Auth       *handlers.AuthHandler
	Health     *handlers.HealthHandler
	Admin      *handlers.AdminHandler
	Contact    *handlers.ContactHandler
	Calendar   *handlers.CalendarHandler
	Invitation *handlers.InvitationHandler
	TimeSlot   *handlers.TimeSlotHandler
}

// Options tunes the route table. Zero values disable rate limiting, which
// tests rely on.
type Options struct {
	RateLimit     int
	AuthRateLimit int
	Gatherer      prometheus.Gatherer
}

func limit(max int) fiber.Handler {
	if max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	})
}

func Setup(app *fiber.App, cfg *config.Config, db *gorm.DB, h Handlers, opts Options) {
	app.Get("/health", h.Health.Check)
	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	jwt := middleware.JWTProtected(cfg)

	// Auth: stricter per-IP limit
	auth := app.Group("/auth", limit(opts.AuthRateLimit))
	auth.Post("/register", h.Auth.Register)
	auth.Post("/login", h.Auth.Login)
	auth.Post("/refresh", h.Auth.Refresh)
	auth.Post("/logout", jwt, h.Auth.Logout)
	auth.Delete("/account", jwt, h.Auth.DeleteAccount)

	contacts := app.Group("/contacts", limit(opts.RateLimit), jwt)
	contacts.Post("/add", h.Contact.Add)
	contacts.Get("/friends", h.Contact.Friends)
	contacts.Get("/incoming", h.Contact.Incoming)
	contacts.Get("/outgoing", h.Contact.Outgoing)
	contacts.Get("/search", h.Contact.Search)
	contacts.Post("/accept", h.Contact.Accept)
	contacts.Post("/reject", h.Contact.Reject)
	contacts.Post("/block", h.Contact.Block)
	contacts.Post("/unblock", h.Contact.Unblock)
	contacts.Post("/unadd", h.Contact.Unadd)

	app.Get("/invitations", limit(opts.RateLimit), jwt, h.Invitation.ListPending)

	calendars := app.Group("/calendars", limit(opts.RateLimit), jwt)
	calendars.Get("/", h.Calendar.List)
	calendars.Post("/", h.Calendar.Create)
	// Static segment before /:id
	calendars.Get("/invitations", h.Invitation.ListPending)

	calendars.Get("/:id", h.Calendar.Get)
	calendars.Put("/:id", h.Calendar.Update)
	calendars.Delete("/:id", h.Calendar.Delete)
	calendars.Delete("/:id/leave", h.Calendar.Leave)
	calendars.Put("/:id/finalize", h.Calendar.Finalize)
	calendars.Get("/:id/ics", h.Calendar.Export)

	calendars.Get("/:id/invitations", h.Invitation.ListForCalendar)
	calendars.Post("/:id/invitations", h.Invitation.Create)
	calendars.Get("/:id/invitations/:invId", h.Invitation.Get)
	calendars.Put("/:id/invitations/:invId", h.Invitation.Respond)
	calendars.Delete("/:id/invitations/:invId", h.Invitation.Delete)

	calendars.Post("/:cid/day/:did/timeslot", h.TimeSlot.Create)
	calendars.Get("/:cid/day/:did/timeslot", h.TimeSlot.List)
	calendars.Get("/:cid/day/:did/timeslot/:tsId", h.TimeSlot.Get)
	calendars.Patch("/:cid/day/:did/timeslot/:tsId", h.TimeSlot.Update)
	calendars.Delete("/:cid/day/:did/timeslot/:tsId", h.TimeSlot.Delete)

	admin := app.Group("/admin", jwt, middleware.AdminRequired(db, cfg))
	admin.Get("/logs", h.Admin.ListLogs)
}
