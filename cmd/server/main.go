package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"clubdesk/internal/cache"
	"clubdesk/internal/models/config"
	"clubdesk/internal/repository/attendance"
	"clubdesk/internal/repository/category"
	"clubdesk/internal/repository/match"
	"clubdesk/internal/repository/person"
	"clubdesk/internal/repository/session"
	"clubdesk/internal/repository/user"
	"clubdesk/internal/service"
	attendance_service "clubdesk/internal/service/attendance"
	lineup_service "clubdesk/internal/service/lineup"
	match_service "clubdesk/internal/service/match"
	policy_service "clubdesk/internal/service/policy"
	roster_service "clubdesk/internal/service/roster"
	schedule_service "clubdesk/internal/service/schedule"
	sync_service "clubdesk/internal/service/sync"
	user_service "clubdesk/internal/service/user"
	"clubdesk/internal/store"
	"clubdesk/internal/web"
	database "clubdesk/pkg"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		fx.Provide(
			config.Load,
			newLogger,
			database.NewPostgres,
			database.NewRedis,
			cache.NewRedisSnapshotStore,
			store.New,

			person.NewPersonRepository,
			session.NewSessionRepository,
			match.NewMatchRepository,
			attendance.NewAttendanceRepository,
			category.NewCategoryRepository,
			user.NewUserRepository,

			policy_service.NewPolicyService,
			lineup_service.NewLineupService,
			attendance_service.NewAttendanceService,
			sync_service.NewSyncService,
			roster_service.NewRosterService,
			schedule_service.NewScheduleService,
			match_service.NewMatchService,
			user_service.NewUserService,

			web.NewHandler,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(loadState, startServer, startSyncLoop),
	)
	app.Run()
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// loadState reads the local snapshot exactly once, before the server
// and the sync loop come up. A missing or corrupt snapshot falls back
// to an empty state and never blocks startup.
func loadState(lc fx.Lifecycle, st *store.Store) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			st.Load(ctx)
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, handler *web.Handler, cfg *config.Config, logger *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: handler.Routes(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// startSyncLoop runs one reconciliation pull at startup and then on a
// fixed interval. Overlap is impossible: the sync service holds a
// single in-flight guard shared with the manual HTTP trigger.
func startSyncLoop(lc fx.Lifecycle, syncSvc service.SyncService, cfg *config.Config, logger *zap.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	pull := func() {
		if _, err := syncSvc.Pull(); err != nil {
			logger.Warn("scheduled sync skipped", zap.Error(err))
		}
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				pull()
				ticker := time.NewTicker(cfg.Sync.Interval)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						pull()
					}
				}
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			<-done
			return nil
		},
	})
}
