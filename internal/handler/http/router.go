package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/guardline/roster-backend/internal/domain/user"
	"github.com/guardline/roster-backend/internal/handler/http/middleware"
	"github.com/guardline/roster-backend/internal/handler/http/response"
	"github.com/guardline/roster-backend/internal/pkg/jwt"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

type Handlers struct {
	Site       SiteHandler
	Guard      GuardHandler
	Shift      ShiftHandler
	Slot       SlotHandler
	Attendance AttendanceHandler
	Payment    PaymentHandler
	Earnings   EarningsHandler
	Events     EventHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "guard-roster"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Board stream authenticates with a short-lived query token
		r.Get("/sites/{id}/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			// Sites
			r.With(middleware.RequirePermission(user.PermissionSiteView)).Get("/sites", h.Site.List)
			r.With(middleware.RequirePermission(user.PermissionSiteView)).Get("/sites/{id}", h.Site.Get)
			r.With(middleware.RequirePermission(user.PermissionSlotView)).Get("/sites/{id}/events/token", h.Events.GetStreamToken)
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/sites", h.Site.Create)
				r.Put("/sites/{id}", h.Site.Update)
				r.Delete("/sites/{id}", h.Site.Delete)
			})

			// Standing shifts
			r.With(middleware.RequirePermission(user.PermissionSiteView)).Get("/sites/{id}/shifts", h.Shift.ListBySite)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionShiftManage))
				r.Put("/sites/{id}/shifts/{type}", h.Shift.Allocate)
				r.Delete("/sites/{id}/shifts/{type}", h.Shift.Clear)
				r.Post("/shifts", h.Shift.Create)
				r.Delete("/shifts/{id}", h.Shift.Delete)
			})

			// Daily boards
			r.With(middleware.RequirePermission(user.PermissionSlotView)).Get("/sites/{id}/slots", h.Slot.GetBoard)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionSlotManage))
				r.Post("/sites/{id}/slots/generate", h.Slot.Generate)
				r.Post("/sites/{id}/slots/regenerate", h.Slot.Regenerate)
				r.Post("/sites/{id}/slots/copy", h.Slot.Copy)
				r.Post("/sites/{id}/slots/temporary", h.Slot.CreateTemporary)
				r.Post("/slots/{id}/assign", h.Slot.Assign)
				r.Post("/slots/{id}/unassign", h.Slot.Unassign)
				r.Delete("/slots/{id}", h.Slot.Delete)
			})
			r.With(middleware.RequirePermission(user.PermissionAttendanceMark)).Post("/slots/{id}/attendance", h.Slot.MarkAttendance)

			// Guards
			r.Route("/guards", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionGuardView))
				r.Get("/", h.Guard.List)
				r.Get("/{id}", h.Guard.Get)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Guard.Create)
					r.Put("/{id}", h.Guard.Update)
					r.Delete("/{id}", h.Guard.Delete)
				})
			})

			// Attendance records
			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceView)).Get("/", h.Attendance.List)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceMark))
					r.Post("/mark", h.Attendance.Mark)
					r.Post("/bulk", h.Attendance.BulkMark)
					r.Post("/copy", h.Attendance.Copy)
					r.Post("/reset", h.Attendance.Reset)
					r.Delete("/{id}", h.Attendance.Unmark)
				})

				r.With(middleware.RequirePermission(user.PermissionAttendanceApprove)).Put("/{id}/status", h.Attendance.UpdateStatus)
			})

			// Payments
			r.Route("/payments", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", h.Payment.List)
				r.Post("/", h.Payment.Create)
				r.Get("/{id}", h.Payment.Get)
				r.Delete("/{id}", h.Payment.Delete)
			})

			// Earnings
			r.Route("/earnings", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionEarningsView))
				r.Get("/guards", h.Earnings.ListGuards)
				r.Get("/guards/export", h.Earnings.ExportGuards)
				r.Get("/guards/{id}", h.Earnings.GetGuard)
				r.Get("/sites/{id}", h.Earnings.GetSite)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
