package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/pratik-mahalle/petalert/internal/domain/alert"
	"github.com/pratik-mahalle/petalert/internal/domain/notification"
	"github.com/pratik-mahalle/petalert/internal/domain/pet"
	"github.com/pratik-mahalle/petalert/internal/domain/subscription"
	"github.com/pratik-mahalle/petalert/internal/domain/user"
	"github.com/pratik-mahalle/petalert/internal/pkg/errors"
)

// MockUserRepository is a mock implementation of user.Repository
type MockUserRepository struct {
	mu          sync.Mutex
	Users       map[int64]*user.User
	EmailIndex  map[string]*user.User
	NextID      int64
	CreateError error
	GetError    error
	UpdateError error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		Users:      make(map[int64]*user.User),
		EmailIndex: make(map[string]*user.User),
		NextID:     1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	if _, ok := m.EmailIndex[u.Email]; ok {
		return errors.Conflict("A user with this email already exists")
	}
	u.ID = m.NextID
	m.NextID++
	cp := *u
	m.Users[u.ID] = &cp
	m.EmailIndex[u.Email] = &cp
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	u, ok := m.EmailIndex[email]
	if !ok {
		return nil, errors.NotFound("User")
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	if _, ok := m.Users[u.ID]; !ok {
		return errors.NotFound("User")
	}
	cp := *u
	m.Users[u.ID] = &cp
	m.EmailIndex[u.Email] = &cp
	return nil
}

// AddUser stores u directly, assigning an ID when it has none
func (m *MockUserRepository) AddUser(u *user.User) *user.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.NextID
		m.NextID++
	}
	cp := *u
	m.Users[u.ID] = &cp
	m.EmailIndex[u.Email] = &cp
	return u
}

// MockPetRepository is a mock implementation of pet.Repository
type MockPetRepository struct {
	mu       sync.Mutex
	Pets     map[int64]*pet.Pet
	NextID   int64
	GetError error
}

func NewMockPetRepository() *MockPetRepository {
	return &MockPetRepository{Pets: make(map[int64]*pet.Pet), NextID: 1}
}

func (m *MockPetRepository) Create(ctx context.Context, p *pet.Pet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.NextID
	m.NextID++
	cp := *p
	m.Pets[p.ID] = &cp
	return nil
}

func (m *MockPetRepository) GetByID(ctx context.Context, id int64) (*pet.Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	p, ok := m.Pets[id]
	if !ok {
		return nil, errors.NotFound("Pet")
	}
	cp := *p
	return &cp, nil
}

func (m *MockPetRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*pet.Pet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*pet.Pet
	for _, p := range m.Pets {
		if p.OwnerID == ownerID {
			cp := *p
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockEventRepository is an in-memory append-only event log
type MockEventRepository struct {
	mu          sync.Mutex
	Events      []*alert.Event
	AppendError error
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) Append(ctx context.Context, ev *alert.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendError != nil {
		return m.AppendError
	}
	cp := *ev
	m.Events = append(m.Events, &cp)
	return nil
}

func (m *MockEventRepository) HistoryFor(ctx context.Context, alertID int64) ([]*alert.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*alert.Event{}
	for i := len(m.Events) - 1; i >= 0; i-- {
		if m.Events[i].AlertID == alertID {
			cp := *m.Events[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MockEventRepository) LatestFor(ctx context.Context, alertID int64) (*alert.Event, error) {
	events, _ := m.HistoryFor(ctx, alertID)
	if len(events) == 0 {
		return nil, errors.NotFound("Alert event")
	}
	return events[0], nil
}

// MockAlertRepository is a mock implementation of alert.Repository.
// Mutations append to Events so alert and event stay consistent.
type MockAlertRepository struct {
	mu          sync.Mutex
	Alerts      map[int64]*alert.Alert
	Events      *MockEventRepository
	NextID      int64
	CreateError error
	UpdateError error
	GetError    error
}

func NewMockAlertRepository(events *MockEventRepository) *MockAlertRepository {
	return &MockAlertRepository{
		Alerts: make(map[int64]*alert.Alert),
		Events: events,
		NextID: 1,
	}
}

func (m *MockAlertRepository) Create(ctx context.Context, a *alert.Alert, ev *alert.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateError != nil {
		return m.CreateError
	}
	for _, existing := range m.Alerts {
		if existing.PetID == a.PetID && existing.Status != alert.StatusClosed {
			return alert.ErrActiveAlertExists
		}
	}
	a.ID = m.NextID
	m.NextID++
	ev.AlertID = a.ID
	if err := m.Events.Append(ctx, ev); err != nil {
		return err
	}
	cp := *a
	m.Alerts[a.ID] = &cp
	return nil
}

func (m *MockAlertRepository) Update(ctx context.Context, a *alert.Alert, expectedVersion int64, events ...*alert.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateError != nil {
		return m.UpdateError
	}
	stored, ok := m.Alerts[a.ID]
	if !ok {
		return errors.NotFound("Alert")
	}
	if stored.Version != expectedVersion {
		cp := *stored
		return &alert.StaleStateError{Current: &cp}
	}
	for _, ev := range events {
		if err := m.Events.Append(ctx, ev); err != nil {
			return err
		}
	}
	cp := *a
	m.Alerts[a.ID] = &cp
	return nil
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id int64) (*alert.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetError != nil {
		return nil, m.GetError
	}
	a, ok := m.Alerts[id]
	if !ok {
		return nil, errors.NotFound("Alert")
	}
	cp := *a
	return &cp, nil
}

func (m *MockAlertRepository) ListByPet(ctx context.Context, petID int64) ([]*alert.Alert, error) {
	all, _, err := m.List(ctx, alert.Filter{PetID: petID}, 1000, 0)
	return all, err
}

func (m *MockAlertRepository) ExistsActiveForPet(ctx context.Context, petID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Alerts {
		if a.PetID == petID && a.Status != alert.StatusClosed {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAlertRepository) List(ctx context.Context, filter alert.Filter, limit, offset int) ([]*alert.Alert, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*alert.Alert
	for _, a := range m.Alerts {
		if filter.PetID != 0 && a.PetID != filter.PetID {
			continue
		}
		if filter.OwnerID != 0 && a.OwnerID != filter.OwnerID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		cp := *a
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if offset >= len(matched) {
		return []*alert.Alert{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// MockSubscriptionRepository is a mock implementation of subscription.Repository
type MockSubscriptionRepository struct {
	mu        sync.Mutex
	Subs      map[int64]*subscription.Subscription
	NextID    int64
	SaveError error
	FindError error
}

func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{Subs: make(map[int64]*subscription.Subscription), NextID: 1}
}

func (m *MockSubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	if s.ID == 0 {
		for _, existing := range m.Subs {
			if existing.AlertID == s.AlertID && existing.UserID == s.UserID {
				return subscription.ErrAlreadySubscribed
			}
		}
		s.ID = m.NextID
		m.NextID++
	} else if _, ok := m.Subs[s.ID]; !ok {
		return errors.NotFound("Subscription")
	}
	cp := *s
	m.Subs[s.ID] = &cp
	return nil
}

func (m *MockSubscriptionRepository) FindByUser(ctx context.Context, userID int64) ([]*subscription.Subscription, error) {
	return m.filter(func(s *subscription.Subscription) bool { return s.UserID == userID })
}

func (m *MockSubscriptionRepository) FindActiveByAlert(ctx context.Context, alertID int64) ([]*subscription.Subscription, error) {
	return m.filter(func(s *subscription.Subscription) bool { return s.AlertID == alertID && s.Active })
}

func (m *MockSubscriptionRepository) FindFor(ctx context.Context, alertID, userID int64) (*subscription.Subscription, error) {
	subs, err := m.filter(func(s *subscription.Subscription) bool { return s.AlertID == alertID && s.UserID == userID })
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, errors.NotFound("Subscription")
	}
	return subs[0], nil
}

func (m *MockSubscriptionRepository) ExistsFor(ctx context.Context, alertID, userID int64) (bool, error) {
	subs, err := m.filter(func(s *subscription.Subscription) bool {
		return s.AlertID == alertID && s.UserID == userID && s.Active
	})
	return len(subs) > 0, err
}

func (m *MockSubscriptionRepository) filter(keep func(*subscription.Subscription) bool) ([]*subscription.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindError != nil {
		return nil, m.FindError
	}
	out := []*subscription.Subscription{}
	for _, s := range m.Subs {
		if keep(s) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MockDeadLetterRepository is a mock implementation of notification.DeadLetterRepository
type MockDeadLetterRepository struct {
	mu        sync.Mutex
	Entries   []*notification.FailedNotification
	SaveError error
}

func NewMockDeadLetterRepository() *MockDeadLetterRepository {
	return &MockDeadLetterRepository{}
}

func (m *MockDeadLetterRepository) Save(ctx context.Context, f *notification.FailedNotification) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return false, m.SaveError
	}
	for _, e := range m.Entries {
		if e.EventID == f.EventID {
			return false, nil
		}
	}
	cp := *f
	cp.ID = int64(len(m.Entries) + 1)
	m.Entries = append(m.Entries, &cp)
	return true, nil
}

func (m *MockDeadLetterRepository) GetByEventID(ctx context.Context, eventID string) (*notification.FailedNotification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.Entries {
		if e.EventID == eventID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, errors.NotFound("Failed notification")
}

func (m *MockDeadLetterRepository) List(ctx context.Context, filter notification.DeadLetterFilter, limit, offset int) ([]*notification.FailedNotification, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []*notification.FailedNotification
	for i := len(m.Entries) - 1; i >= 0; i-- {
		e := m.Entries[i]
		if filter.Channel != "" && e.Channel != filter.Channel {
			continue
		}
		if filter.AlertID != 0 && e.AlertID != filter.AlertID {
			continue
		}
		cp := *e
		matched = append(matched, &cp)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return []*notification.FailedNotification{}, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *MockDeadLetterRepository) CountByChannel(ctx context.Context) (map[notification.Channel]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := map[notification.Channel]int64{}
	for _, ch := range notification.Channels {
		counts[ch] = 0
	}
	for _, e := range m.Entries {
		counts[e.Channel]++
	}
	return counts, nil
}

// Len returns the number of stored entries
func (m *MockDeadLetterRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Entries)
}

// MockDispatcher records the status changes it receives
type MockDispatcher struct {
	mu      sync.Mutex
	Changes []notification.StatusChange
	Err     error
}

func (m *MockDispatcher) Dispatch(ctx context.Context, change notification.StatusChange) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Changes = append(m.Changes, change)
	return m.Err
}

// Calls returns the recorded status changes
func (m *MockDispatcher) Calls() []notification.StatusChange {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notification.StatusChange(nil), m.Changes...)
}

// MockEventSink records published events
type MockEventSink struct {
	mu     sync.Mutex
	Events []*alert.Event
	Err    error
}

func (m *MockEventSink) Publish(ctx context.Context, ev *alert.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ev
	m.Events = append(m.Events, &cp)
	return m.Err
}

// MockPublisher records enqueued notification jobs
type MockPublisher struct {
	mu   sync.Mutex
	Jobs []*notification.Job
	// FailChannel makes Publish fail for jobs of that channel
	FailChannel notification.Channel
	Err         error
}

func (m *MockPublisher) Publish(ctx context.Context, job *notification.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil && (m.FailChannel == "" || m.FailChannel == job.Channel) {
		return m.Err
	}
	cp := *job
	m.Jobs = append(m.Jobs, &cp)
	return nil
}

// Published returns the recorded jobs
func (m *MockPublisher) Published() []*notification.Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*notification.Job(nil), m.Jobs...)
}
