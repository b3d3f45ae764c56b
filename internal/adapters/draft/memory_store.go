package draft

import (
	"sync"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
)

// MemoryStore is a DraftStore for tests and non-HTTP callers. It stores the persisted schema, not
// the intent itself, so loads go through the same validation as cookies.
type MemoryStore struct {
	mu    sync.Mutex
	draft *Draft
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ domain.DraftStore = (*MemoryStore)(nil)

func (m *MemoryStore) Save(intent domain.DonationIntent) error {
	d := FromIntent(intent)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = &d
	return nil
}

func (m *MemoryStore) Load() (domain.DonationIntent, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.draft == nil {
		return nil, false
	}
	intent, err := m.draft.Intent()
	if err != nil {
		return nil, false
	}
	return intent, true
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = nil
	return nil
}

// Put stores a raw draft, bypassing validation. Tests use it to plant corrupted drafts.
func (m *MemoryStore) Put(d Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.draft = &d
}
