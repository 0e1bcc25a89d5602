package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"intranet/config"
	"intranet/internal/delivery"
	"intranet/internal/delivery/http"
	"intranet/internal/delivery/http/middleware"
	"intranet/internal/delivery/http/router/handler"
	"intranet/internal/domain/service"
	authfirebase "intranet/internal/infra/auth/firebase"
	"intranet/internal/infra/firestore"
	logs "intranet/internal/infra/log"
	"intranet/internal/infra/metrics"
	"intranet/internal/infra/notification"
	"intranet/internal/infra/pubsub"
	"intranet/internal/usecase"
	"intranet/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		firestore.NewClient,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			firestore.NewDirectoryRepository,
			firestore.NewInvitationRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			authfirebase.NewIdentityProvider,
			pubsub.NewEventPublisher,
			newFirebaseService,
			newMetricsRecorder,
		),
	)
}

// newFirebaseService creates the FCM push service with dependency injection
func newFirebaseService(ctx context.Context, cfg *config.Config) (service.NotificationService, error) {
	if cfg.Firebase == nil || cfg.Firebase.CredentialsPath == "" {
		return nil, nil // Push notification is optional
	}

	svc, err := notification.NewFirebaseService(ctx, cfg.Firebase.CredentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firebase service: %w", err)
	}

	return svc, nil
}

// newMetricsRecorder creates the metrics recorder with dependency injection
func newMetricsRecorder(cfg *config.Config) service.MetricsRecorder {
	if cfg.Metrics == nil || !cfg.Metrics.Enabled {
		return metrics.NopRecorder{}
	}

	return metrics.NewRecorder()
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewDirectoryService,
			impl.NewRedemptionService,
			impl.NewRoutingService,
			impl.NewSessionService,
			impl.NewInvitationService,
		),
		fx.Invoke(registerSessionShutdown),
	)
}

// registerSessionShutdown tears down every live session observer on exit.
func registerSessionShutdown(lc fx.Lifecycle, sessionUC usecase.SessionUsecase) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			sessionUC.Close()

			return nil
		},
	})
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSessionHandler,
			handler.NewRedemptionHandler,
			handler.NewInvitationHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
