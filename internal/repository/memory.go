package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/mr1hm/go-relief-coordinator/internal/models"
)

// MemoryStore keeps everything in process. Volunteers are returned in
// insertion order so matcher ties stay deterministic.
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[string]models.User
	volunteers    []models.Volunteer
	requests      map[string]models.EmergencyRequest
	notifications []NotificationRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]models.User),
		requests: make(map[string]models.EmergencyRequest),
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.ID]; exists {
		return fmt.Errorf("user %s already exists", u.ID)
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) CreateVolunteer(ctx context.Context, v *models.Volunteer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.volunteers {
		if existing.ID == v.ID {
			return fmt.Errorf("volunteer %s already exists", v.ID)
		}
	}
	cp := *v
	cp.Skills = slices.Clone(v.Skills)
	m.volunteers = append(m.volunteers, cp)
	return nil
}

func (m *MemoryStore) GetAvailableVolunteers(ctx context.Context) ([]models.Volunteer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Volunteer
	for _, v := range m.volunteers {
		if v.Dispatchable() {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdateVolunteer(ctx context.Context, id string, upd VolunteerUpdate) (*models.Volunteer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.volunteers {
		if m.volunteers[i].ID != id {
			continue
		}
		upd.apply(&m.volunteers[i])
		cp := m.volunteers[i]
		cp.Skills = slices.Clone(cp.Skills)
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CreateEmergencyRequest(ctx context.Context, r *models.EmergencyRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.requests[r.ID]; exists {
		return fmt.Errorf("emergency request %s already exists", r.ID)
	}
	m.requests[r.ID] = *r
	return nil
}

func (m *MemoryStore) GetEmergencyRequest(ctx context.Context, id string) (*models.EmergencyRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MemoryStore) ListEmergencyRequests(ctx context.Context, opts EmergencyFilter) ([]models.EmergencyRequest, error) {
	m.mu.RLock()
	results := make([]models.EmergencyRequest, 0, len(m.requests))
	for _, r := range m.requests {
		if opts.Status != nil && r.Status != *opts.Status {
			continue
		}
		if opts.Urgency != nil && r.Urgency != *opts.Urgency {
			continue
		}
		results = append(results, r)
	}
	m.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(results) {
			return []models.EmergencyRequest{}, nil
		}
		results = results[opts.Offset:]
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func (m *MemoryStore) UpdateEmergencyStatus(ctx context.Context, id string, status models.RequestStatus, volunteerID string) (*models.EmergencyRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := models.CheckTransition(r.Status, status); err != nil {
		return nil, err
	}
	r.Status = status
	if volunteerID != "" {
		r.AssignedVolunteerID = volunteerID
	}
	r.UpdatedAt = time.Now().UTC()
	m.requests[id] = r
	return &r, nil
}

func (m *MemoryStore) LogNotification(ctx context.Context, rec *NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = append(m.notifications, *rec)
	return nil
}

// Notifications returns a copy of the audit trail.
func (m *MemoryStore) Notifications() []NotificationRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.notifications)
}

func (m *MemoryStore) Close() error {
	return nil
}
