package impl

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"intranet/internal/domain/entity"
	"intranet/internal/domain/repository"
	"intranet/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fakeDirectoryRepo is an in-memory DirectoryRepository with push
// subscription support.
type fakeDirectoryRepo struct {
	mu          sync.Mutex
	entries     map[string]*entity.DirectoryEntry
	subscribers map[string]map[int]func(*entity.DirectoryEntry)
	errFns      map[string]map[int]func(error)
	nextSubID   int

	getErr       error
	createErr    error
	patchErr     error
	subscribeErr error
}

func newFakeDirectoryRepo() *fakeDirectoryRepo {
	return &fakeDirectoryRepo{
		entries:     make(map[string]*entity.DirectoryEntry),
		subscribers: make(map[string]map[int]func(*entity.DirectoryEntry)),
		errFns:      make(map[string]map[int]func(error)),
	}
}

func cloneEntry(entry *entity.DirectoryEntry) *entity.DirectoryEntry {
	if entry == nil {
		return nil
	}
	clone := *entry
	clone.Roles = append([]string(nil), entry.Roles...)
	clone.LoginHistory = append([]time.Time(nil), entry.LoginHistory...)

	return &clone
}

func (f *fakeDirectoryRepo) Get(ctx context.Context, subjectID string) (*entity.DirectoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	entry, ok := f.entries[subjectID]
	if !ok {
		return nil, repository.ErrEntryNotFound
	}

	return cloneEntry(entry), nil
}

func (f *fakeDirectoryRepo) Create(ctx context.Context, entry *entity.DirectoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.entries[entry.SubjectID] = cloneEntry(entry)

	return nil
}

func (f *fakeDirectoryRepo) Patch(ctx context.Context, subjectID string, patch entity.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.patchErr != nil {
		return f.patchErr
	}

	entry, ok := f.entries[subjectID]
	if !ok {
		entry = &entity.DirectoryEntry{SubjectID: subjectID}
		f.entries[subjectID] = entry
	}
	for field, value := range patch {
		switch field {
		case "subjectId":
			entry.SubjectID = value.(string)
		case "dni":
			entry.DNI = value.(string)
		case "roles":
			entry.Roles = append([]string(nil), value.([]string)...)
		case "updatedAt":
			entry.UpdatedAt = value.(time.Time)
		case "lastLoginAt":
			entry.LastLoginAt = value.(time.Time)
		case "loginHistory":
			appendOp := value.(entity.ArrayAppend)
			for _, elem := range appendOp.Elems {
				entry.LoginHistory = append(entry.LoginHistory, elem.(time.Time))
			}
		}
	}

	return nil
}

func (f *fakeDirectoryRepo) Subscribe(ctx context.Context, subjectID string, fn func(*entity.DirectoryEntry), errFn func(error)) (service.Subscription, error) {
	f.mu.Lock()
	if f.subscribeErr != nil {
		f.mu.Unlock()

		return nil, f.subscribeErr
	}

	id := f.nextSubID
	f.nextSubID++
	if f.subscribers[subjectID] == nil {
		f.subscribers[subjectID] = make(map[int]func(*entity.DirectoryEntry))
		f.errFns[subjectID] = make(map[int]func(error))
	}
	f.subscribers[subjectID][id] = fn
	f.errFns[subjectID][id] = errFn
	initial := cloneEntry(f.entries[subjectID])
	f.mu.Unlock()

	// Mirror the store's behavior: the subscription delivers the current
	// value first, nil for an absent document.
	fn(initial)

	return service.SubscriptionFunc(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subscribers[subjectID], id)
		delete(f.errFns[subjectID], id)
	}), nil
}

// push redelivers the subject's current entry to all live subscribers.
func (f *fakeDirectoryRepo) push(subjectID string) {
	f.mu.Lock()
	entry := cloneEntry(f.entries[subjectID])
	fns := make([]func(*entity.DirectoryEntry), 0, len(f.subscribers[subjectID]))
	for _, fn := range f.subscribers[subjectID] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(entry)
	}
}

// pushError reports a transport failure to all live subscribers.
func (f *fakeDirectoryRepo) pushError(subjectID string, err error) {
	f.mu.Lock()
	fns := make([]func(error), 0, len(f.errFns[subjectID]))
	for _, fn := range f.errFns[subjectID] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(err)
	}
}

func (f *fakeDirectoryRepo) subscriberCount(subjectID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.subscribers[subjectID])
}

// fakeInvitationRepo is an in-memory InvitationRepository whose MarkUsed
// is a conditional atomic update, like the store's transactional one.
type fakeInvitationRepo struct {
	mu      sync.Mutex
	records map[string]*entity.InvitationRecord

	findErr   error
	createErr error
	markErr   error
}

func newFakeInvitationRepo() *fakeInvitationRepo {
	return &fakeInvitationRepo{records: make(map[string]*entity.InvitationRecord)}
}

func (f *fakeInvitationRepo) Create(ctx context.Context, record *entity.InvitationRecord) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	id := uuid.New().String()
	clone := *record
	clone.InvitationID = id
	f.records[id] = &clone

	return id, nil
}

func (f *fakeInvitationRepo) FindUnused(ctx context.Context, dni, code string) ([]*entity.InvitationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []*entity.InvitationRecord
	for _, record := range f.records {
		if record.DNI == dni && record.Code == code && !record.Used {
			clone := *record
			out = append(out, &clone)
		}
	}

	return out, nil
}

func (f *fakeInvitationRepo) MarkUsed(ctx context.Context, invitationID, usedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return f.markErr
	}
	record, ok := f.records[invitationID]
	if !ok {
		return repository.ErrInvitationNotFound
	}
	if record.Used {
		return repository.ErrInvitationConsumed
	}
	now := time.Now()
	record.Used = true
	record.UsedBy = usedBy
	record.UsedAt = &now

	return nil
}

func (f *fakeInvitationRepo) List(ctx context.Context, includeUsed bool) ([]*entity.InvitationRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.InvitationRecord
	for _, record := range f.records {
		if !includeUsed && record.Used {
			continue
		}
		clone := *record
		out = append(out, &clone)
	}

	return out, nil
}

func (f *fakeInvitationRepo) get(invitationID string) *entity.InvitationRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	record := f.records[invitationID]
	if record == nil {
		return nil
	}
	clone := *record

	return &clone
}

// recordPublisher captures published access events.
type recordPublisher struct {
	mu     sync.Mutex
	events []*service.AccessEvent
	err    error
}

func (p *recordPublisher) PublishAccessEvent(ctx context.Context, event *service.AccessEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)

	return nil
}

func (p *recordPublisher) Close() error { return nil }

func (p *recordPublisher) published() []*service.AccessEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]*service.AccessEvent(nil), p.events...)
}

// recordMetrics captures recorded outcomes.
type recordMetrics struct {
	mu       sync.Mutex
	outcomes map[string]int
	active   int
}

func newRecordMetrics() *recordMetrics {
	return &recordMetrics{outcomes: make(map[string]int)}
}

func (m *recordMetrics) RecordRedemption(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[outcome]++
}

func (m *recordMetrics) SetActiveSessions(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = n
}

func (m *recordMetrics) outcome(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.outcomes[name]
}

func (m *recordMetrics) activeSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.active
}

// recordNotifier captures push notifications.
type recordNotifier struct {
	mu    sync.Mutex
	sends []string
}

func (n *recordNotifier) SendSingleNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sends = append(n.sends, token)

	return nil
}

func (n *recordNotifier) sendCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return len(n.sends)
}

// fakeIdentityProvider resolves fixed tokens to fixed identities.
type fakeIdentityProvider struct {
	identities map[string]*entity.Identity
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{identities: make(map[string]*entity.Identity)}
}

func (p *fakeIdentityProvider) VerifyIDToken(ctx context.Context, idToken string) (*entity.Identity, error) {
	identity, ok := p.identities[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}

	return identity, nil
}
