package directory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/margitantal68/authgate"
)

// Memory is a map-backed user directory. Usernames and emails are unique;
// records get uuid identifiers on create. Safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	byID         map[string]authgate.UserRecord
	idByUsername map[string]string
	idByEmail    map[string]string
}

// NewMemory returns an empty directory.
func NewMemory() *Memory {
	return &Memory{
		byID:         make(map[string]authgate.UserRecord),
		idByUsername: make(map[string]string),
		idByEmail:    make(map[string]string),
	}
}

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (authgate.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.idByUsername[username]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return m.byID[id], nil
}

func (m *Memory) GetUserByID(ctx context.Context, id string) (authgate.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.byID[id]
	if !ok {
		return authgate.UserRecord{}, authgate.ErrUserNotFound
	}
	return record, nil
}

func (m *Memory) CreateUser(ctx context.Context, input authgate.CreateUserInput) (authgate.UserRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.idByUsername[input.Username]; ok {
		return authgate.UserRecord{}, authgate.ErrUsernameTaken
	}
	if _, ok := m.idByEmail[input.Email]; ok {
		return authgate.UserRecord{}, authgate.ErrEmailTaken
	}

	record := authgate.UserRecord{
		ID:           uuid.NewString(),
		Username:     input.Username,
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
	}

	m.byID[record.ID] = record
	m.idByUsername[record.Username] = record.ID
	m.idByEmail[record.Email] = record.ID

	return record, nil
}

func (m *Memory) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return authgate.ErrUserNotFound
	}

	record.PasswordHash = newHash
	m.byID[id] = record

	return nil
}

func (m *Memory) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[id]
	if !ok {
		return authgate.ErrUserNotFound
	}

	delete(m.byID, id)
	delete(m.idByUsername, record.Username)
	delete(m.idByEmail, record.Email)

	return nil
}

// ListUsers returns all records ordered by username for stable output.
func (m *Memory) ListUsers(ctx context.Context) ([]authgate.UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]authgate.UserRecord, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Username < records[j].Username
	})

	return records, nil
}

var _ authgate.UserDirectory = (*Memory)(nil)
