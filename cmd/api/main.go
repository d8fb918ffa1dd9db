package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guardline/roster-backend/internal/config"
	"github.com/guardline/roster-backend/internal/domain/attendance"
	"github.com/guardline/roster-backend/internal/domain/guard"
	"github.com/guardline/roster-backend/internal/domain/payment"
	"github.com/guardline/roster-backend/internal/domain/shift"
	"github.com/guardline/roster-backend/internal/domain/site"
	"github.com/guardline/roster-backend/internal/domain/slot"
	appHTTP "github.com/guardline/roster-backend/internal/handler/http"
	"github.com/guardline/roster-backend/internal/pkg/cache"
	"github.com/guardline/roster-backend/internal/pkg/database"
	"github.com/guardline/roster-backend/internal/pkg/jwt"
	"github.com/guardline/roster-backend/internal/pkg/sse"
	"github.com/guardline/roster-backend/internal/repository/memory"
	"github.com/guardline/roster-backend/internal/repository/postgresql"
	attendanceService "github.com/guardline/roster-backend/internal/service/attendance"
	"github.com/guardline/roster-backend/internal/service/board"
	earningsService "github.com/guardline/roster-backend/internal/service/earnings"
	guardService "github.com/guardline/roster-backend/internal/service/guard"
	paymentService "github.com/guardline/roster-backend/internal/service/payment"
	shiftService "github.com/guardline/roster-backend/internal/service/shift"
	siteService "github.com/guardline/roster-backend/internal/service/site"
	slotService "github.com/guardline/roster-backend/internal/service/slot"
)

type repositories struct {
	site       site.SiteRepository
	guard      guard.GuardRepository
	shift      shift.ShiftRepository
	slot       slot.SlotRepository
	attendance attendance.AttendanceRepository
	payment    payment.PaymentRepository
	close      func()
}

func newRepositories(ctx context.Context, cfg *config.Config) (repositories, error) {
	if cfg.App.Store == config.StoreMemory {
		store := memory.NewStore()
		return repositories{
			site:       memory.NewSiteRepository(store),
			guard:      memory.NewGuardRepository(store),
			shift:      memory.NewShiftRepository(store),
			slot:       memory.NewSlotRepository(store),
			attendance: memory.NewAttendanceRepository(store),
			payment:    memory.NewPaymentRepository(store),
			close:      func() {},
		}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
	if err != nil {
		return repositories{}, err
	}
	return repositories{
		site:       postgresql.NewSiteRepository(db),
		guard:      postgresql.NewGuardRepository(db),
		shift:      postgresql.NewShiftRepository(db),
		slot:       postgresql.NewSlotRepository(db),
		attendance: postgresql.NewAttendanceRepository(db),
		payment:    postgresql.NewPaymentRepository(db),
		close:      db.Close,
	}, nil
}

// newBoardCache returns nil when Redis is not configured or unreachable; boards are then read from the store.
func newBoardCache(ctx context.Context, cfg *config.Config) cache.KV {
	if cfg.Redis.Addr == "" {
		return nil
	}
	client, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		slog.Warn("Board cache disabled", "addr", cfg.Redis.Addr, "error", err)
		return nil
	}
	return cache.NewRedisKV(client)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := newRepositories(ctx, cfg)
	if err != nil {
		slog.Error("Error connecting to database", "error", err)
		os.Exit(1)
	}
	defer repos.close()

	kv := newBoardCache(ctx, cfg)
	hub := sse.NewHub()
	publisher := board.NewPublisher(kv, hub)
	rules := attendanceService.NewRules(repos.attendance, repos.slot)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret)

	sites := siteService.NewSiteService(repos.site)
	guards := guardService.NewGuardService(repos.guard)
	shifts := shiftService.NewShiftService(repos.shift, repos.site, repos.guard)
	slots := board.NewCachedSlotService(
		slotService.NewSlotService(repos.slot, repos.attendance, repos.site, repos.guard, rules, publisher),
		kv,
		cfg.Redis.CacheTTL,
	)
	records := attendanceService.NewAttendanceService(repos.attendance, repos.shift, repos.slot, repos.site, repos.guard, rules, publisher)
	payments := paymentService.NewPaymentService(repos.payment, repos.guard)
	earnings := earningsService.NewEarningsService(repos.guard, repos.site, repos.attendance, repos.payment)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
		},
		jwtService,
		appHTTP.Handlers{
			Site:       appHTTP.NewSiteHandler(sites),
			Guard:      appHTTP.NewGuardHandler(guards),
			Shift:      appHTTP.NewShiftHandler(shifts),
			Slot:       appHTTP.NewSlotHandler(slots),
			Attendance: appHTTP.NewAttendanceHandler(records),
			Payment:    appHTTP.NewPaymentHandler(payments),
			Earnings:   appHTTP.NewEarningsHandler(earnings),
			Events:     appHTTP.NewEventHandler(hub, jwtService, sites),
		},
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// board streams end when the process is signalled
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Server starting", "port", cfg.App.Port, "store", cfg.App.Store, "board_cache", kv != nil)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
	}
}
