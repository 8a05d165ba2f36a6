package testkit

import (
	"context"
	"sync"
	"sync/atomic"

	"orderboard/domain/core"
	"orderboard/domain/order"
)

// StaticSource is an in-memory source fetcher for tests and demos
type StaticSource struct {
	id    core.SourceID
	mu    sync.RWMutex
	table *order.RawTable
	err   error
	calls atomic.Int64
}

// NewStaticSource serves table on every fetch
func NewStaticSource(id core.SourceID, table *order.RawTable) *StaticSource {
	return &StaticSource{id: id, table: table}
}

// NewDemoSource serves a generated order sheet
func NewDemoSource(config OrderGeneratorConfig) *StaticSource {
	return NewStaticSource(core.NewSourceID("demo", "0"), NewOrderGenerator(config).GenerateTable())
}

// SourceID identifies the source
func (s *StaticSource) SourceID() core.SourceID {
	return s.id
}

// Fetch returns the configured table or error
func (s *StaticSource) Fetch(ctx context.Context) (*order.RawTable, error) {
	s.calls.Add(1)
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.table, nil
}

// SetTable swaps the served table and clears any error
func (s *StaticSource) SetTable(table *order.RawTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table, s.err = table, nil
}

// SetError makes subsequent fetches fail with err
func (s *StaticSource) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns how many times Fetch ran
func (s *StaticSource) Calls() int {
	return int(s.calls.Load())
}
