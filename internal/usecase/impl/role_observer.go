package impl

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"intranet/internal/domain/entity"
	"intranet/internal/domain/repository"
	"intranet/internal/domain/service"
)

// roleObserver is the per-session state machine behind SessionSnapshot. It
// multiplexes two independent event sources — identity events and
// directory push notifications — under one lock, so the derived snapshot
// is always internally consistent even though the sources are not mutually
// ordered.
type roleObserver struct {
	directory repository.DirectoryRepository
	notifier  service.NotificationService // may be nil when push is not configured
	logger    *slog.Logger

	mu           sync.Mutex
	identity     *entity.Identity
	deviceToken  string
	roles        entity.Roles
	phase        entity.LoadingPhase
	connectivity entity.Connectivity
	sub          service.Subscription
	closed       bool

	ready     chan struct{}
	readyOnce sync.Once
}

func newRoleObserver(directory repository.DirectoryRepository, notifier service.NotificationService, logger *slog.Logger) *roleObserver {
	return &roleObserver{
		directory:    directory,
		notifier:     notifier,
		logger:       logger,
		roles:        entity.Roles{},
		phase:        entity.PhaseBooting,
		connectivity: entity.ConnectivityOnline,
		ready:        make(chan struct{}),
	}
}

// SetIdentity drives the identity-provider side of the state machine. A
// nil identity means signed out. Any change of active subject tears the
// previous directory subscription down before the new one starts, so role
// data can never leak across subjects.
func (o *roleObserver) SetIdentity(ctx context.Context, identity *entity.Identity) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()

		return nil
	}

	sameSubject := o.identity != nil && identity != nil && o.identity.SubjectID == identity.SubjectID
	if sameSubject && o.sub != nil {
		o.identity = identity
		o.mu.Unlock()

		return nil
	}

	// Teardown before re-subscribe: a leaked subscription from a previous
	// subject is a stale-role defect.
	if o.sub != nil {
		o.sub.Unsubscribe()
		o.sub = nil
	}

	o.identity = identity
	o.roles = entity.Roles{}

	if identity == nil {
		o.phase = entity.PhaseReady
		o.markReadyLocked()
		o.mu.Unlock()

		return nil
	}

	o.phase = entity.PhaseResolving
	subjectID := identity.SubjectID
	o.mu.Unlock()

	sub, err := o.directory.Subscribe(ctx, subjectID, o.applyEntry, o.applyError)
	if err != nil {
		return err
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		sub.Unsubscribe()

		return nil
	}
	o.sub = sub
	o.mu.Unlock()

	return nil
}

// SetDeviceToken registers the device to push role-change notifications to.
func (o *roleObserver) SetDeviceToken(token string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.deviceToken = token
}

// applyEntry handles a directory push notification. A nil entry is the
// absent-document case and normalizes to the empty role set.
func (o *roleObserver) applyEntry(entry *entity.DirectoryEntry) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()

		return
	}

	previous := o.roles
	o.roles = entry.RoleSet()
	o.phase = entity.PhaseReady
	// A delivered value proves the transport is healthy again.
	o.connectivity = entity.ConnectivityOnline
	o.markReadyLocked()

	changed := !sameRoleSet(previous, o.roles)
	token := o.deviceToken
	roles := o.roles
	var subjectID string
	if o.identity != nil {
		subjectID = o.identity.SubjectID
	}
	o.mu.Unlock()

	if changed && subjectID != "" {
		o.logger.Info("Role set changed",
			slog.String("subject_id", subjectID),
			slog.Any("roles", roles.ToStrings()))
		o.notifyRoleChange(token)
	}
}

// applyError handles a transport error on the directory subscription. The
// safe default is deny: the subject is treated as holding no roles until
// the stream recovers.
func (o *roleObserver) applyError(err error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()

		return
	}

	var subjectID string
	if o.identity != nil {
		subjectID = o.identity.SubjectID
	}
	o.roles = entity.Roles{}
	o.phase = entity.PhaseReady
	o.markReadyLocked()
	o.mu.Unlock()

	o.logger.Error("Directory subscription failed, denying by default",
		slog.Any("error", err), slog.String("subject_id", subjectID))
}

// SetConnectivity records a connectivity flip. Going offline freezes the
// snapshot at the last-known roles; nothing else changes.
func (o *roleObserver) SetConnectivity(online bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}

	if online {
		o.connectivity = entity.ConnectivityOnline
	} else {
		o.connectivity = entity.ConnectivityOffline
	}
}

// Snapshot returns a copy of the derived session state.
func (o *roleObserver) Snapshot() entity.SessionSnapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	return entity.SessionSnapshot{
		Identity:     o.identity,
		Roles:        slices.Clone(o.roles),
		Connectivity: o.connectivity,
		LoadingPhase: o.phase,
	}
}

// WaitReady blocks until the directory subscription has delivered its
// first value or the timeout elapses. Returns false on timeout.
func (o *roleObserver) WaitReady(ctx context.Context, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-o.ready:
		return true
	case <-ctx.Done():
		return false
	case <-timer.C:
		return false
	}
}

// Close tears the observer down, cancelling its subscription. Idempotent.
func (o *roleObserver) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()

		return
	}
	o.closed = true
	sub := o.sub
	o.sub = nil
	o.markReadyLocked()
	o.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
}

func (o *roleObserver) markReadyLocked() {
	o.readyOnce.Do(func() { close(o.ready) })
}

func (o *roleObserver) notifyRoleChange(token string) {
	if o.notifier == nil || token == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := o.notifier.SendSingleNotification(ctx, token,
			"Acceso actualizado",
			"Tu rol en la intranet ha sido actualizado",
			map[string]string{"type": service.EventRoleChanged},
		)
		if err != nil {
			o.logger.Warn("Failed to push role-change notification", slog.Any("error", err))
		}
	}()
}

// sameRoleSet compares two role sets ignoring order.
func sameRoleSet(a, b entity.Roles) bool {
	if len(a) != len(b) {
		return false
	}
	as := a.ToStrings()
	bs := b.ToStrings()
	slices.Sort(as)
	slices.Sort(bs)

	return slices.Equal(as, bs)
}
