package database

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"greenledger/backend/models"
)

// MemoryURL selects MemoryStore instead of Postgres for local demos.
const MemoryURL = "memory://"

// MemoryStore keeps rows in process memory and enforces the same unique email
// constraint as the waitlist table.
type MemoryStore struct {
	mu          sync.Mutex
	waitlist    []models.WaitlistEntry
	connections []models.CloudConnection
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

func (m *MemoryStore) InsertWaitlistEntry(ctx context.Context, e models.WaitlistEntry) (models.WaitlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return models.WaitlistEntry{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.waitlist {
		if strings.EqualFold(existing.Email, e.Email) {
			return models.WaitlistEntry{}, ErrDuplicate
		}
	}
	e.ID = uuid.NewString()
	e.CreatedAt = m.now().UTC()
	m.waitlist = append(m.waitlist, e)
	return e, nil
}

func (m *MemoryStore) ListWaitlistEntries(ctx context.Context) ([]models.WaitlistEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	out := append([]models.WaitlistEntry(nil), m.waitlist...)
	m.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) InsertCloudConnection(ctx context.Context, c models.CloudConnection) (models.CloudConnection, error) {
	if err := ctx.Err(); err != nil {
		return models.CloudConnection{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = m.now().UTC()
	c.UpdatedAt = c.CreatedAt
	if c.Metadata == nil {
		c.Metadata = map[string]string{}
	}
	m.connections = append(m.connections, c)
	return c, nil
}

func (m *MemoryStore) ListCloudConnections(ctx context.Context, userEmail string) ([]models.CloudConnection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	out := []models.CloudConnection{}
	for _, c := range m.connections {
		if userEmail == "" || c.UserEmail == userEmail {
			out = append(out, c)
		}
	}
	m.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
