package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"intranet/config"
	deliverycontext "intranet/internal/delivery/context"
	"intranet/internal/domain/entity"
	domainerrors "intranet/internal/domain/errors"
	"intranet/internal/domain/repository"
	"intranet/internal/domain/service"
	"intranet/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface. It is the
// registry of live per-client role observers; each observer owns the
// directory subscription for its session and is torn down exactly once on
// sign-out or shutdown.
type sessionService struct {
	cfg         *config.Config
	provider    service.IdentityProvider
	directory   repository.DirectoryRepository
	directoryUC usecase.DirectoryUsecase
	notifier    service.NotificationService
	metrics     service.MetricsRecorder
	logger      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*roleObserver
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	cfg *config.Config,
	provider service.IdentityProvider,
	directory repository.DirectoryRepository,
	directoryUC usecase.DirectoryUsecase,
	notifier service.NotificationService,
	metrics service.MetricsRecorder,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		cfg:         cfg,
		provider:    provider,
		directory:   directory,
		directoryUC: directoryUC,
		notifier:    notifier,
		metrics:     metrics,
		logger:      logger,
		sessions:    make(map[string]*roleObserver),
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *sessionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// SignIn verifies the provider-issued token, bootstraps the directory
// entry and starts a role observer for the new session.
func (srv *sessionService) SignIn(ctx context.Context, input usecase.SignInInput) (*usecase.SignInOutput, error) {
	if input.IDToken == "" {
		return nil, errors.Wrap(domainerrors.ErrInvalidArgument, "id token is required")
	}

	identity, err := srv.provider.VerifyIDToken(ctx, input.IDToken)
	if err != nil {
		srv.log(ctx).Warn("ID token verification failed", slog.Any("error", err))

		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, "id token verification failed")
	}

	srv.log(ctx).Info("Sign-in", slog.String("subject_id", identity.SubjectID))

	// Bootstrap with bounded polling: a store that is still initializing
	// gets a few attempts before a terminal initialization error surfaces.
	if err := srv.ensureEntryWithRetry(ctx, identity); err != nil {
		return nil, err
	}

	observer := newRoleObserver(srv.directory, srv.notifier, srv.logger)
	observer.SetDeviceToken(input.DeviceToken)
	if err := observer.SetIdentity(ctx, identity); err != nil {
		observer.Close()
		srv.log(ctx).Error("Directory subscription failed at sign-in",
			slog.Any("error", err), slog.String("subject_id", identity.SubjectID))

		return nil, errors.Wrap(domainerrors.ErrStoreUnavailable, "directory subscription failed")
	}

	// Best effort: give the subscription a chance to deliver its first
	// value so the caller starts from a ready snapshot. On timeout the
	// snapshot is still resolving and the client polls.
	if !observer.WaitReady(ctx, srv.cfg.Session.InitTimeout) {
		srv.log(ctx).Warn("Directory subscription slow to deliver first value",
			slog.String("subject_id", identity.SubjectID))
	}

	sessionID := uuid.New().String()

	srv.mu.Lock()
	srv.sessions[sessionID] = observer
	active := len(srv.sessions)
	srv.mu.Unlock()
	srv.metrics.SetActiveSessions(active)

	return &usecase.SignInOutput{
		SessionID: sessionID,
		Snapshot:  observer.Snapshot(),
	}, nil
}

func (srv *sessionService) ensureEntryWithRetry(ctx context.Context, identity *entity.Identity) error {
	initCtx, cancel := context.WithTimeout(ctx, srv.cfg.Session.InitTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt < srv.cfg.Session.InitRetries; attempt++ {
		if _, lastErr = srv.directoryUC.EnsureEntry(initCtx, identity); lastErr == nil {
			return nil
		}
		// Domain-level rejections are not transient; do not poll on them.
		var appErr domainerrors.AppError
		if errors.As(lastErr, &appErr) && appErr != domainerrors.ErrStoreUnavailable {
			return lastErr
		}

		select {
		case <-initCtx.Done():
			attempt = srv.cfg.Session.InitRetries
		case <-time.After(srv.cfg.Session.InitRetryDelay):
		}
	}

	srv.log(ctx).Error("Directory bootstrap failed after bounded polling",
		slog.Any("error", lastErr), slog.String("subject_id", identity.SubjectID))

	return errors.Wrap(domainerrors.ErrStoreUnavailable, "directory bootstrap failed")
}

// Snapshot returns the current derived snapshot for a session.
func (srv *sessionService) Snapshot(ctx context.Context, sessionID string) (entity.SessionSnapshot, error) {
	observer, err := srv.observer(sessionID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}

	return observer.Snapshot(), nil
}

// Refresh forces a directory re-read so the routing policy re-evaluates
// immediately rather than waiting for the next push notification. This is
// the redemption protocol's step-4 hook.
func (srv *sessionService) Refresh(ctx context.Context, sessionID string) (entity.SessionSnapshot, error) {
	observer, err := srv.observer(sessionID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}

	snapshot := observer.Snapshot()
	if snapshot.Identity == nil {
		return snapshot, nil
	}

	entry, err := srv.directory.Get(ctx, snapshot.Identity.SubjectID)
	switch {
	case errors.Is(err, repository.ErrEntryNotFound):
		observer.applyEntry(nil)
	case err != nil:
		srv.log(ctx).Error("Forced directory re-read failed",
			slog.Any("error", err), slog.String("subject_id", snapshot.Identity.SubjectID))

		return entity.SessionSnapshot{}, errors.Wrap(domainerrors.ErrStoreUnavailable, "directory re-read failed")
	default:
		observer.applyEntry(entry)
	}

	return observer.Snapshot(), nil
}

// SetConnectivity records a client-reported connectivity flip.
func (srv *sessionService) SetConnectivity(ctx context.Context, sessionID string, online bool) (entity.SessionSnapshot, error) {
	observer, err := srv.observer(sessionID)
	if err != nil {
		return entity.SessionSnapshot{}, err
	}

	observer.SetConnectivity(online)
	srv.log(ctx).Debug("Connectivity updated",
		slog.String("session_id", sessionID), slog.Bool("online", online))

	return observer.Snapshot(), nil
}

// SignOut tears the session down, cancelling its directory subscription.
func (srv *sessionService) SignOut(ctx context.Context, sessionID string) error {
	srv.mu.Lock()
	observer, ok := srv.sessions[sessionID]
	if ok {
		delete(srv.sessions, sessionID)
	}
	active := len(srv.sessions)
	srv.mu.Unlock()

	if !ok {
		return errors.Wrap(domainerrors.ErrSessionNotFound, "unknown session")
	}

	observer.Close()
	srv.metrics.SetActiveSessions(active)
	srv.log(ctx).Info("Sign-out", slog.String("session_id", sessionID))

	return nil
}

// Identity returns the authenticated identity bound to a session.
func (srv *sessionService) Identity(ctx context.Context, sessionID string) (*entity.Identity, error) {
	observer, err := srv.observer(sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := observer.Snapshot()
	if snapshot.Identity == nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "session has no identity")
	}

	return snapshot.Identity, nil
}

// Close tears down every live session. Called on shutdown.
func (srv *sessionService) Close() {
	srv.mu.Lock()
	observers := make([]*roleObserver, 0, len(srv.sessions))
	for id, observer := range srv.sessions {
		observers = append(observers, observer)
		delete(srv.sessions, id)
	}
	srv.mu.Unlock()

	for _, observer := range observers {
		observer.Close()
	}
	srv.metrics.SetActiveSessions(0)
}

func (srv *sessionService) observer(sessionID string) (*roleObserver, error) {
	srv.mu.RLock()
	observer, ok := srv.sessions[sessionID]
	srv.mu.RUnlock()
	if !ok {
		return nil, errors.Wrap(domainerrors.ErrSessionNotFound, "unknown session")
	}

	return observer, nil
}
