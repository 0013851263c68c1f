package repomanager

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sealvault/sealvault/internal/common"
	"github.com/sealvault/sealvault/internal/dbx"
	"github.com/sealvault/sealvault/internal/server/models"
	"github.com/sealvault/sealvault/internal/server/repositories/entries"
	"github.com/sealvault/sealvault/internal/server/repositories/metadata"
	"github.com/sealvault/sealvault/internal/server/repositories/users"
)

// memStore is the shared state behind the in-memory repositories. A single
// mutex makes every repository call atomic, which matches the single-record
// atomicity the Postgres statements provide.
type memStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	bySubject map[string]string
	slots     map[string]map[int16]*models.MetadataSlot
	entries   map[string]map[string]*models.Entry
}

// InMemoryRepositoryManager vends repositories over a process-local store.
// Intended for tests; it ignores the DBTX argument entirely.
type InMemoryRepositoryManager struct {
	store *memStore
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{store: &memStore{
		users:     make(map[string]*models.User),
		bySubject: make(map[string]string),
		slots:     make(map[string]map[int16]*models.MetadataSlot),
		entries:   make(map[string]map[string]*models.Entry),
	}}
}

func (m *InMemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *InMemoryRepositoryManager) Users(dbx.DBTX) users.Repository {
	return &memUsers{store: m.store}
}

func (m *InMemoryRepositoryManager) Metadata(dbx.DBTX) metadata.Repository {
	return &memMetadata{store: m.store}
}

func (m *InMemoryRepositoryManager) Entries(dbx.DBTX) entries.Repository {
	return &memEntries{store: m.store}
}

type memUsers struct{ store *memStore }

func (r *memUsers) Upsert(_ context.Context, subject string, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if id, ok := r.store.bySubject[subject]; ok {
		u := r.store.users[id]
		u.Email = email
		cp := *u
		return &cp, nil
	}

	u := &models.User{
		ID:        uuid.NewString(),
		Subject:   subject,
		Email:     email,
		CreatedAt: time.Now(),
	}
	r.store.users[u.ID] = u
	r.store.bySubject[subject] = u.ID
	cp := *u
	return &cp, nil
}

func (r *memUsers) Get(_ context.Context, id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	u, ok := r.store.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(r.store.bySubject, u.Subject)
	delete(r.store.users, id)
	// cascade, like the FK constraints do
	delete(r.store.slots, id)
	delete(r.store.entries, id)
	return nil
}

type memMetadata struct{ store *memStore }

func (r *memMetadata) GetCurrent(_ context.Context, userID string) (*models.MetadataSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var current *models.MetadataSlot
	for _, s := range r.store.slots[userID] {
		if !s.Valid {
			continue
		}
		if current == nil || s.Seq > current.Seq {
			current = s
		}
	}
	if current == nil {
		return nil, common.ErrorNotFound
	}
	cp := *current
	cp.Blob = append([]byte(nil), current.Blob...)
	return &cp, nil
}

func (r *memMetadata) GetPair(_ context.Context, userID string) ([]*models.MetadataSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*models.MetadataSlot
	for slot := int16(0); slot <= 1; slot++ {
		if s, ok := r.store.slots[userID][slot]; ok {
			cp := *s
			cp.Blob = append([]byte(nil), s.Blob...)
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memMetadata) UpsertSlot(_ context.Context, slot *models.MetadataSlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	pair, ok := r.store.slots[slot.UserID]
	if !ok {
		pair = make(map[int16]*models.MetadataSlot, 2)
		r.store.slots[slot.UserID] = pair
	}
	cp := *slot
	cp.Blob = append([]byte(nil), slot.Blob...)
	cp.UpdatedAt = time.Now()
	pair[slot.Slot] = &cp
	return nil
}

type memEntries struct{ store *memStore }

func (r *memEntries) Insert(_ context.Context, entry *models.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byName, ok := r.store.entries[entry.UserID]
	if !ok {
		byName = make(map[string]*models.Entry)
		r.store.entries[entry.UserID] = byName
	}
	if _, exists := byName[entry.Name]; exists {
		return common.ErrorDuplicateName
	}
	cp := *entry
	cp.Ciphertext = append([]byte(nil), entry.Ciphertext...)
	cp.DeletionHash = append([]byte(nil), entry.DeletionHash...)
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	byName[entry.Name] = &cp
	return nil
}

func (r *memEntries) Count(_ context.Context, userID string) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.entries[userID])), nil
}

func (r *memEntries) ListNames(_ context.Context, userID string) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	names := make([]string, 0, len(r.store.entries[userID]))
	for name := range r.store.entries[userID] {
		names = append(names, name)
	}
	return names, nil
}

func (r *memEntries) Get(_ context.Context, userID string, name string) (*models.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	e, ok := r.store.entries[userID][name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *e
	cp.Ciphertext = append([]byte(nil), e.Ciphertext...)
	cp.DeletionHash = append([]byte(nil), e.DeletionHash...)
	return &cp, nil
}

func (r *memEntries) GetAll(_ context.Context, userID string) ([]*models.Entry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var result []*models.Entry
	for _, e := range r.store.entries[userID] {
		cp := *e
		cp.Ciphertext = append([]byte(nil), e.Ciphertext...)
		cp.DeletionHash = append([]byte(nil), e.DeletionHash...)
		result = append(result, &cp)
	}
	return result, nil
}

func (r *memEntries) Delete(_ context.Context, userID string, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.entries[userID][name]; !ok {
		return common.ErrorNotFound
	}
	delete(r.store.entries[userID], name)
	return nil
}
