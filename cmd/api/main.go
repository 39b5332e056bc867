package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hadir-app/hadir-backend-go/internal/config"
	appHTTP "github.com/hadir-app/hadir-backend-go/internal/handler/http"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/chat"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/cron"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/database"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/jwt"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/sse"
	"github.com/hadir-app/hadir-backend-go/internal/pkg/workclock"
	"github.com/hadir-app/hadir-backend-go/internal/repository/postgresql"
	attendanceService "github.com/hadir-app/hadir-backend-go/internal/service/attendance"
	authService "github.com/hadir-app/hadir-backend-go/internal/service/auth"
	conversationService "github.com/hadir-app/hadir-backend-go/internal/service/conversation"
	employeeService "github.com/hadir-app/hadir-backend-go/internal/service/employee"
	notificationService "github.com/hadir-app/hadir-backend-go/internal/service/notification"
	scheduleService "github.com/hadir-app/hadir-backend-go/internal/service/schedule"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(cfg.App.Timezone)
	if err != nil {
		fmt.Println("Error loading timezone:", err)
		os.Exit(1)
	}

	logLevel := parseLogLevel(cfg.App.LogLevel)
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	defaultStart, err := workclock.Parse(cfg.WorkHours.DefaultStart)
	if err != nil {
		slog.Error("invalid DEFAULT_WORK_START", "error", err)
		os.Exit(1)
	}
	defaultEnd, err := workclock.Parse(cfg.WorkHours.DefaultEnd)
	if err != nil {
		slog.Error("invalid DEFAULT_WORK_END", "error", err)
		os.Exit(1)
	}
	summaryAt, err := workclock.Parse(cfg.Scheduler.DailySummaryAt)
	if err != nil {
		slog.Error("invalid DAILY_SUMMARY_AT", "error", err)
		os.Exit(1)
	}
	lateFrom, err := workclock.Parse(cfg.Scheduler.LateAlertFrom)
	if err != nil {
		slog.Error("invalid LATE_ALERT_FROM", "error", err)
		os.Exit(1)
	}
	lateUntil, err := workclock.Parse(cfg.Scheduler.LateAlertUntil)
	if err != nil {
		slog.Error("invalid LATE_ALERT_UNTIL", "error", err)
		os.Exit(1)
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	conversationRepo := postgresql.NewConversationRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)
	chatClient := chat.NewClient(cfg.Chat.APIBaseURL, cfg.Chat.BotToken, cfg.Chat.SendTimeout)
	hub := sse.NewHub()

	resolver := scheduleService.NewResolver(scheduleRepo, defaultStart, defaultEnd)
	schedules := scheduleService.NewService(resolver, scheduleRepo, employeeRepo)
	conversations := conversationService.NewService(conversationRepo, cfg.Scheduler.ConversationTTL)
	employees := employeeService.NewService(employeeRepo)
	attendance := attendanceService.NewService(attendanceRepo, employeeRepo, resolver, conversations, postgresql.NewTransactor(db), hub, loc)
	auth := authService.NewService(employeeRepo, jwtService)

	notifications := notificationService.NewService(
		notificationRepo,
		employeeRepo,
		attendance,
		attendanceRepo,
		resolver,
		conversations,
		chatClient,
		chatClient,
		notificationService.Config{
			DailySummaryAt:      summaryAt,
			LateAlertFrom:       lateFrom,
			LateAlertUntil:      lateUntil,
			MissedCheckoutAfter: cfg.Scheduler.MissedCheckoutAfter,
			KeepAliveEvery:      cfg.Scheduler.KeepAliveEvery,
		},
		loc,
	)

	scheduler := cron.NewScheduler(cfg.Scheduler.TickInterval)
	scheduler.AddJob("notification-rules", notifications.EvaluateTick)
	scheduler.Start()

	router := appHTTP.NewRouter(appHTTP.RouterDeps{
		JWTService: jwtService,
		Webhook: appHTTP.NewWebhookHandler(
			employees,
			attendance,
			schedules,
			conversations,
			chatClient,
			appHTTP.OfficeGeofence{
				Latitude:     cfg.Office.Latitude,
				Longitude:    cfg.Office.Longitude,
				RadiusMeters: cfg.Office.RadiusMeters,
			},
			cfg.Chat.WebhookSecret,
			loc,
		),
		Auth:         appHTTP.NewAuthHandler(auth, jwtService),
		Attendance:   appHTTP.NewAttendanceHandler(attendance, loc),
		Employee:     appHTTP.NewEmployeeHandler(employees),
		Schedule:     appHTTP.NewScheduleHandler(schedules),
		Notification: appHTTP.NewNotificationHandler(notificationRepo, loc),
		SSE:          appHTTP.NewSSEHandler(hub),
		Env:          cfg.App.Env,
		LogLevel:     logLevel,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("shutdown complete")
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
