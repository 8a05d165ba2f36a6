package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"orderboard/adapters/coercer"
	"orderboard/domain/core"
	"orderboard/domain/order"
	"orderboard/internal/cache"
	apperrors "orderboard/internal/errors"
)

// MockSourceFetcher is a testify mock of ports.SourceFetcher
type MockSourceFetcher struct {
	mock.Mock
}

func (m *MockSourceFetcher) Fetch(ctx context.Context) (*order.RawTable, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*order.RawTable)
	return table, args.Error(1)
}

func (m *MockSourceFetcher) SourceID() core.SourceID {
	return core.NewSourceID("sheet", "0")
}

var buenosAires = func() *time.Location {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	if err != nil {
		panic(err)
	}
	return loc
}()

func newPipeline(t *testing.T) *Pipeline {
	t.Helper()
	tables, err := order.DefaultStatusTables()
	require.NoError(t, err)
	return NewPipeline(
		coercer.NewDateNormalizer(buenosAires),
		coercer.NewTotalNormalizer(coercer.ConventionAR),
		tables,
		nil,
	)
}

func newService(t *testing.T, src *MockSourceFetcher) *BoardService {
	t.Helper()
	datasets, err := cache.New[*order.Dataset](4)
	require.NoError(t, err)
	return NewBoardService(src, newPipeline(t), datasets, 5*time.Minute, nil)
}

func sampleTable() *order.RawTable {
	return &order.RawTable{
		Headers: []string{order.ColDate, order.ColCode, order.ColClient, order.ColTotal,
			order.ColType, order.ColOrderStatus, order.ColPaymentStatus},
		Rows: []order.RawRow{
			{order.ColDate: "01/03/2024 10:00:00", order.ColCode: "A1", order.ColClient: "Ana",
				order.ColTotal: "$1.000,00", order.ColType: "Envío",
				order.ColOrderStatus: "Leido", order.ColPaymentStatus: "El pago fue aprobado y acreditado"},
			{order.ColDate: "", order.ColCode: "", order.ColClient: "", order.ColTotal: "",
				order.ColType: "", order.ColOrderStatus: "", order.ColPaymentStatus: ""},
			{order.ColDate: "05/03/2024 09:00:00", order.ColCode: "A2", order.ColClient: "",
				order.ColTotal: "abc", order.ColType: "Retiro",
				order.ColOrderStatus: "Enviado", order.ColPaymentStatus: ""},
			{order.ColDate: "ayer", order.ColCode: "A3", order.ColClient: "Caro",
				order.ColTotal: "$ 1.234,56 extra", order.ColType: "Envío",
				order.ColOrderStatus: "Perdido", order.ColPaymentStatus: "approved"},
			{order.ColDate: "03/03/2024", order.ColCode: "A4", order.ColClient: "Dani",
				order.ColTotal: "500", order.ColType: "Envío",
				order.ColOrderStatus: "Nuevo", order.ColPaymentStatus: "pending"},
		},
		Fingerprint: core.NewHash([]byte("sample")),
	}
}

func TestPipelineEndToEndRow(t *testing.T) {
	rows, report := newPipeline(t).Normalize(sampleTable())
	require.Len(t, rows, 4)

	first := rows[0]
	require.NotNil(t, first.DateParsed)
	assert.True(t, time.Date(2024, 3, 1, 10, 0, 0, 0, buenosAires).Equal(*first.DateParsed))
	assert.Equal(t, 1000.0, first.Total)
	assert.Equal(t, "📦 Armando pedido", first.OrderStatusLabel)
	assert.Equal(t, "💰 Pagado", first.PaymentStatusLabel)
	assert.Equal(t, "", first.Invoice, "absent passthrough columns default to empty")

	second := rows[1]
	assert.Equal(t, "", second.Client, "present null cells are not defaulted")
	assert.Equal(t, 0.0, second.Total)
	assert.Equal(t, "⚪ Sin definir", second.PaymentStatusLabel)

	third := rows[2]
	assert.Nil(t, third.DateParsed)
	assert.Equal(t, "ayer", third.DateRaw)
	assert.Equal(t, 1234.56, third.Total)
	assert.Equal(t, "❓ Perdido", third.OrderStatusLabel)

	assert.Equal(t, 5, report.SourceRows)
	assert.Equal(t, 1, report.DroppedEmptyRows)
	assert.Equal(t, []string{order.ColConfirmation, order.ColClaim, order.ColInvoice}, report.MissingColumns)
	assert.Equal(t, 1, report.UnparsedDates)
	assert.Equal(t, 1, report.DateFallbacks)
	assert.Equal(t, 1, report.UnparsedTotals)
	assert.Equal(t, []string{"Perdido"}, report.UnknownOrderStatuses)
	assert.Nil(t, report.UnknownPaymentStatuses)
}

func TestPipelineAppliesDefaultsForAbsentColumns(t *testing.T) {
	table := &order.RawTable{
		Headers: []string{order.ColCode},
		Rows:    []order.RawRow{{order.ColCode: "Z9"}},
	}

	rows, report := newPipeline(t).Normalize(table)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "N/A", r.Client)
	assert.Equal(t, "N/A", r.Type)
	assert.Equal(t, 0.0, r.Total)
	assert.Equal(t, order.StatusUndefined, r.OrderStatusRaw)
	assert.Equal(t, "⚪ Sin definir", r.OrderStatusLabel)
	assert.Equal(t, "⚪ Sin definir", r.PaymentStatusLabel)
	assert.Len(t, report.MissingColumns, len(order.Columns)-1)
}

func TestDatasetIsCached(t *testing.T) {
	src := new(MockSourceFetcher)
	src.On("Fetch", mock.Anything).Return(sampleTable(), nil).Once()
	svc := newService(t, src)

	first, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	second, err := svc.Dataset(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 4, first.Len())
	src.AssertExpectations(t)

	state := svc.CacheState()
	assert.True(t, state.Loaded)
	assert.Equal(t, 4, state.Rows)
	assert.Equal(t, int64(1), state.Stats.Hits)
}

func TestRefreshReloads(t *testing.T) {
	src := new(MockSourceFetcher)
	src.On("Fetch", mock.Anything).Return(sampleTable(), nil).Twice()
	svc := newService(t, src)

	first, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	refreshed, err := svc.Refresh(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, first.LoadID, refreshed.LoadID)
	assert.True(t, first.Fingerprint.Equals(refreshed.Fingerprint), "same sheet, same fingerprint")
	src.AssertNumberOfCalls(t, "Fetch", 2)
}

func TestViewSortsFiltersAndSummarizes(t *testing.T) {
	src := new(MockSourceFetcher)
	src.On("Fetch", mock.Anything).Return(sampleTable(), nil)
	svc := newService(t, src)

	v := svc.View(context.Background(), order.Filter{})
	require.False(t, v.Failed())
	codes := make([]string, len(v.Rows))
	for i, r := range v.Rows {
		codes[i] = r.Code
	}
	assert.Equal(t, []string{"A2", "A4", "A1", "A3"}, codes, "newest first, undated last")

	assert.Equal(t, 4, v.Summary.TotalRows)
	assert.Equal(t, 1, v.Summary.NewOrders)
	assert.Equal(t, 1, v.Summary.InTransit)
	assert.Equal(t, 0, v.Summary.Delivered)
	assert.Equal(t, 2, v.Summary.Paid)
	assert.InDelta(t, 2734.56, v.Summary.Totals.Sum, 1e-9)
	assert.Equal(t, []string{"🆕 Nuevo pedido", "📦 Armando pedido", "🚚 En camino", "❓ Perdido"}, v.OrderLabels)
	require.NotNil(t, v.Report)

	paid := svc.View(context.Background(), order.Filter{PaymentStatus: "💰 Pagado"})
	assert.Equal(t, 2, paid.Summary.TotalRows)
	assert.Equal(t, v.OrderLabels, paid.OrderLabels, "filter choices come from the whole dataset")

	none := svc.View(context.Background(), order.Filter{OrderStatus: "✅ Entregado"})
	assert.True(t, none.Empty())
	assert.False(t, none.Failed())
	assert.Equal(t, 0, none.Summary.TotalRows)
}

func TestViewOnFetchFailure(t *testing.T) {
	src := new(MockSourceFetcher)
	src.On("Fetch", mock.Anything).Return(nil, core.ErrSourceUnreachable)
	svc := newService(t, src)

	v := svc.View(context.Background(), order.Filter{OrderStatus: "x"})
	assert.True(t, v.Failed())
	assert.True(t, v.Empty())
	assert.Equal(t, order.Summary{}, v.Summary)
	assert.Equal(t, "x", v.Filter.OrderStatus)

	_, err := svc.Dataset(context.Background())
	assert.True(t, apperrors.IsFetchError(err))
	assert.True(t, errors.Is(err, core.ErrSourceUnreachable))
	src.AssertNumberOfCalls(t, "Fetch", 2)
	assert.False(t, svc.CacheState().Loaded)
}

func TestEmptyDatasetIsFetchError(t *testing.T) {
	src := new(MockSourceFetcher)
	src.On("Fetch", mock.Anything).Return(&order.RawTable{
		Headers: []string{order.ColCode},
		Rows:    []order.RawRow{{order.ColCode: ""}, {order.ColCode: "  "}},
	}, nil)
	svc := newService(t, src)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsFetchError(err))
	assert.True(t, core.IsEmptySource(err))

	v := svc.View(context.Background(), order.Filter{})
	assert.True(t, v.Failed())
	assert.Equal(t, 0, v.Summary.TotalRows)
}

type recordingListener struct {
	loads []core.LoadID
}

func (r *recordingListener) DatasetLoaded(ds *order.Dataset) {
	r.loads = append(r.loads, ds.LoadID)
}

func TestListenersNotifiedOnSuccessfulLoadOnly(t *testing.T) {
	src := new(MockSourceFetcher)
	src.On("Fetch", mock.Anything).Return(sampleTable(), nil).Once()
	src.On("Fetch", mock.Anything).Return(nil, core.ErrSourceUnreachable).Once()
	svc := newService(t, src)
	listener := &recordingListener{}
	svc.Subscribe(listener)

	ds, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	_, err = svc.Dataset(context.Background())
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background())
	require.Error(t, err)

	assert.Equal(t, []core.LoadID{ds.LoadID}, listener.loads)
}

func TestNonTabularSourceIsFetchError(t *testing.T) {
	src := new(MockSourceFetcher)
	src.On("Fetch", mock.Anything).Return(nil, core.NewNonTabularError("text/html; charset=utf-8"))
	svc := newService(t, src)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsFetchError(err))
	assert.True(t, core.IsNonTabular(err))
}
