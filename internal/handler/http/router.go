package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/hadir-app/hadir-backend-go/internal/handler/http/middleware"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/jwt"
)

type RouterDeps struct {
	JWTService   jwt.Service
	Webhook      WebhookHandler
	Auth         AuthHandler
	Attendance   AttendanceHandler
	Employee     EmployeeHandler
	Schedule     ScheduleHandler
	Notification NotificationHandler
	SSE          SSEHandler
	Env          string
	LogLevel     slog.Level
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hadir-backend"),
		slog.String("env", deps.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  deps.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	// Chat platform callback. Authenticated by the secret path segment,
	// not by JWT.
	r.Post("/webhook/{secret}", deps.Webhook.HandleUpdate)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", deps.Auth.Login)
			r.Post("/refresh", deps.Auth.RefreshToken)
			r.Post("/logout", deps.Auth.Logout)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(deps.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(deps.JWTService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/status", deps.Attendance.Status)
				r.Get("/history", deps.Attendance.MyHistory)

				// Admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/summary", deps.Attendance.Summary)
					r.Get("/history/{employeeID}", deps.Attendance.History)
				})
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", deps.Employee.List)
					r.Get("/{employeeID}", deps.Employee.Get)
					r.Put("/{phone}/hours", deps.Employee.UpdateHours)
					r.Delete("/{employeeID}", deps.Employee.Deactivate)
				})

				r.Post("/schedules/exceptional", deps.Schedule.SetExceptional)
				r.Get("/notifications/log", deps.Notification.List)
			})

			r.Get("/events/stream", deps.SSE.Attendance)
		})
	})

	return r
}
