package app

import (
	"context"
	"sync"
	"time"

	"orderboard/domain/core"
	"orderboard/domain/order"
	"orderboard/internal"
	"orderboard/internal/cache"
	"orderboard/internal/errors"
	"orderboard/internal/profiling"
	"orderboard/ports"
)

// BoardService loads, caches and slices the order dataset
type BoardService struct {
	source   ports.SourceFetcher
	pipeline *Pipeline
	cache    *cache.TTLCache[*order.Dataset]
	ttl      time.Duration
	analyzer *profiling.TotalsAnalyzer
	logger   *internal.Logger
	now      func() time.Time

	listenersMu sync.RWMutex
	listeners   []ports.DatasetListener
}

// NewBoardService creates a board service. The cache is owned by the caller
// and keyed by source ID, so one cache may serve several sources.
func NewBoardService(source ports.SourceFetcher, pipeline *Pipeline, datasets *cache.TTLCache[*order.Dataset], ttl time.Duration, logger *internal.Logger) *BoardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &BoardService{
		source:   source,
		pipeline: pipeline,
		cache:    datasets,
		ttl:      ttl,
		analyzer: profiling.NewTotalsAnalyzer(),
		logger:   logger.WithComponent("BoardService"),
		now:      time.Now,
	}
}

// Subscribe registers l for dataset load notifications
func (s *BoardService) Subscribe(l ports.DatasetListener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *BoardService) notify(ds *order.Dataset) {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	for _, l := range s.listeners {
		l.DatasetLoaded(ds)
	}
}

// Tables returns the status tables used for translation
func (s *BoardService) Tables() *order.StatusTables {
	return s.pipeline.Tables()
}

// Dataset returns the cached dataset or loads it on a miss.
// Failures carry the FETCH_ERROR code and are not cached.
func (s *BoardService) Dataset(ctx context.Context) (*order.Dataset, error) {
	key := s.source.SourceID().String()
	return s.cache.GetOrLoad(ctx, key, s.ttl, s.load)
}

// Refresh discards the cached dataset and loads a new one
func (s *BoardService) Refresh(ctx context.Context) (*order.Dataset, error) {
	key := s.source.SourceID().String()
	previous, _, hadPrevious := s.cache.Get(key)
	s.cache.Invalidate(key)
	s.logger.Info("refresh requested for %s", s.source.SourceID())

	ds, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if hadPrevious && previous.Fingerprint.Equals(ds.Fingerprint) {
		s.logger.Debug("source %s unchanged since load %s", s.source.SourceID(), previous.LoadID)
	}
	return ds, nil
}

// View returns the filtered, sorted view. A failed load becomes an empty
// view carrying the failure message instead of an error.
func (s *BoardService) View(ctx context.Context, f order.Filter) order.View {
	ds, err := s.Dataset(ctx)
	if err != nil {
		s.logger.Error("dataset unavailable: %v", err)
		return order.EmptyView(f, err.Error())
	}
	return s.BuildView(ds, f)
}

// BuildView applies f to ds and computes the summary over the matching rows
func (s *BoardService) BuildView(ds *order.Dataset, f order.Filter) order.View {
	rows := ds.Select(f)
	summary := order.CountStatuses(rows, s.Tables().Markers)
	summary.Totals = s.analyzer.Analyze(rows)

	report := ds.Report
	return order.View{
		Rows:          rows,
		Summary:       summary,
		Filter:        f,
		OrderLabels:   ds.OrderLabels(),
		PaymentLabels: ds.PaymentLabels(),
		LoadID:        ds.LoadID.String(),
		LoadedAt:      ds.LoadedAt,
		Report:        &report,
	}
}

// CacheState reports what is cached for the source without loading
func (s *BoardService) CacheState() ports.CacheState {
	id := s.source.SourceID()
	state := ports.CacheState{SourceID: id, TTL: s.ttl, Stats: s.cache.Stats()}
	if ds, storedAt, ok := s.cache.Get(id.String()); ok {
		state.Loaded = true
		state.LoadedAt = storedAt
		state.Rows = ds.Len()
	}
	return state
}

func (s *BoardService) load(ctx context.Context) (*order.Dataset, error) {
	startTime := s.now()
	id := s.source.SourceID()

	table, err := s.source.Fetch(ctx)
	if err != nil {
		if core.IsNonTabular(err) {
			s.logger.Warn("%s did not return a table; check that the sheet is shared publicly", id)
		}
		return nil, errors.FetchError(id.String(), err)
	}

	rows, report := s.pipeline.Normalize(table)
	if len(rows) == 0 {
		return nil, errors.FetchError(id.String(), core.ErrEmptySource)
	}
	report.Duration = s.now().Sub(startTime)

	ds := order.NewDataset(id, table.Fingerprint, s.now(), rows, s.Tables(), report)
	s.logger.Info("loaded %d orders from %s (load %s, fingerprint %s, %s)",
		ds.Len(), id, ds.LoadID, table.Fingerprint.Short(), report.Duration)
	s.notify(ds)
	return ds, nil
}

var _ ports.BoardPort = (*BoardService)(nil)
