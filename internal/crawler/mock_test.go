package crawler

import (
	"context"
	"sync"
	"time"

	"sjsage522/patentworker/services/cache"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu      sync.Mutex
	cache   map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setKeys = append(m.setKeys, key)
	if m.setErr != nil {
		return m.setErr
	}
	m.cache[key] = value
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

// eventLog records lookups and sleeps in the order they happen.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) sleep(_ context.Context, d time.Duration) error {
	l.add("sleep:" + d.String())
	return nil
}

// mockDetailSource answers lookups from fixed results.
type mockDetailSource struct {
	details map[string]*DetailInfoRecord
	errs    map[string]error
	log     *eventLog
	calls   int
}

func (m *mockDetailSource) Lookup(_ context.Context, regNo string) (*DetailInfoRecord, error) {
	m.calls++
	if m.log != nil {
		m.log.add("lookup:" + regNo)
	}
	if err, ok := m.errs[regNo]; ok {
		return nil, err
	}
	if d, ok := m.details[regNo]; ok {
		return d, nil
	}
	return &DetailInfoRecord{RegistrationStatus: StatusMaintained, ValidityStatus: StatusMaintained}, nil
}

// mockListSource returns fixed records.
type mockListSource struct {
	records []SearchResultRecord
	err     error
	queries []string
}

func (m *mockListSource) Search(_ context.Context, query string) ([]SearchResultRecord, error) {
	m.queries = append(m.queries, query)
	return m.records, m.err
}

// mockBibliography answers by application number.
type mockBibliography struct {
	items map[string]*Bibliography
	err   error
}

func (m *mockBibliography) Bibliography(_ context.Context, appNo string) (*Bibliography, error) {
	if m.err != nil {
		return nil, m.err
	}
	if b, ok := m.items[appNo]; ok {
		return b, nil
	}
	return &Bibliography{}, nil
}
