package quotes

import (
	"context"
	"sync"

	"github.com/yourusername/resale-pricing/internal/errors"
)

// MemoryStore keeps quotes in process. It backs the local CLI and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	quotes map[string]*Quote
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{quotes: make(map[string]*Quote)}
}

// SaveQuote stores q under its id.
func (m *MemoryStore) SaveQuote(_ context.Context, q *Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotes[q.QuoteID] = q
	return nil
}

// GetQuote returns the quote stored under quoteID.
func (m *MemoryStore) GetQuote(_ context.Context, quoteID string) (*Quote, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quotes[quoteID]
	if !ok {
		return nil, errors.ErrQuoteNotFound(quoteID)
	}
	return q, nil
}
