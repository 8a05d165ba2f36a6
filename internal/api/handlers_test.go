package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderboard/adapters/coercer"
	"orderboard/app"
	"orderboard/domain/core"
	"orderboard/domain/order"
	"orderboard/internal/cache"
	"orderboard/internal/errors"
	"orderboard/internal/testkit"
)

func fixtureTable() *order.RawTable {
	return &order.RawTable{
		Headers: []string{order.ColDate, order.ColCode, order.ColTotal, order.ColOrderStatus, order.ColPaymentStatus},
		Rows: []order.RawRow{
			{order.ColDate: "02/01/2024 08:00:00", order.ColCode: "B1", order.ColTotal: "100,50",
				order.ColOrderStatus: "Nuevo", order.ColPaymentStatus: "approved"},
			{order.ColDate: "04/01/2024 08:00:00", order.ColCode: "B2", order.ColTotal: "$2.000",
				order.ColOrderStatus: "Enviado", order.ColPaymentStatus: "pending"},
			{order.ColDate: "03/01/2024 08:00:00", order.ColCode: "B3", order.ColTotal: "10",
				order.ColOrderStatus: "Enviado", order.ColPaymentStatus: "approved"},
		},
		Fingerprint: core.NewHash([]byte("fixture")),
	}
}

func newTestServer(t *testing.T, src *testkit.StaticSource) *httptest.Server {
	t.Helper()
	tables, err := order.DefaultStatusTables()
	require.NoError(t, err)
	pipeline := app.NewPipeline(
		coercer.NewDateNormalizer(time.UTC),
		coercer.NewTotalNormalizer(coercer.ConventionAR),
		tables, nil,
	)
	datasets, err := cache.New[*order.Dataset](2)
	require.NoError(t, err)
	board := app.NewBoardService(src, pipeline, datasets, time.Minute, nil)

	srv := httptest.NewServer(NewRouter(board, nil))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, rawURL string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(rawURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp
}

func TestListOrders(t *testing.T) {
	srv := newTestServer(t, testkit.NewStaticSource(core.NewSourceID("s", "0"), fixtureTable()))

	var body ordersResponse
	resp := getJSON(t, srv.URL+"/orders", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 3, body.Count)
	assert.Equal(t, "B2", body.Rows[0].Code)
	assert.Equal(t, "B3", body.Rows[1].Code)
	assert.Equal(t, "B1", body.Rows[2].Code)
	assert.Equal(t, 100.5, body.Rows[2].Total)
	assert.NotEmpty(t, body.LoadID)

	q := url.Values{"order_status": {"🚚 En camino"}, "payment_status": {"💰 Pagado"}}
	var filtered ordersResponse
	getJSON(t, srv.URL+"/orders?"+q.Encode(), &filtered)
	require.Equal(t, 1, filtered.Count)
	assert.Equal(t, "B3", filtered.Rows[0].Code)
	assert.Equal(t, "🚚 En camino", filtered.Filter.OrderStatus)
}

func TestGetSummary(t *testing.T) {
	srv := newTestServer(t, testkit.NewStaticSource(core.NewSourceID("s", "0"), fixtureTable()))

	var body summaryResponse
	resp := getJSON(t, srv.URL+"/summary", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, body.Summary.TotalRows)
	assert.Equal(t, 1, body.Summary.NewOrders)
	assert.Equal(t, 2, body.Summary.InTransit)
	assert.Equal(t, 2, body.Summary.Paid)
	assert.InDelta(t, 2110.5, body.Summary.Totals.Sum, 1e-9)
	assert.Contains(t, body.OrderLabels, "🆕 Nuevo pedido")
}

func TestFailedLoad(t *testing.T) {
	src := testkit.NewStaticSource(core.NewSourceID("s", "0"), nil)
	src.SetError(core.NewSourceStatusError(http.StatusNotFound, "https://example.test/export"))
	srv := newTestServer(t, src)

	var summary summaryResponse
	resp := getJSON(t, srv.URL+"/summary", &summary)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Load-Error"))
	assert.Equal(t, 0, summary.Summary.TotalRows)

	var errBody errorResponse
	resp = getJSON(t, srv.URL+"/orders", &errBody)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, errors.CodeFetchError, errBody.Code)

	resp = getJSON(t, srv.URL+"/report", &errBody)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, errors.CodeFetchError, errBody.Code)
}

func TestRefreshAndHealth(t *testing.T) {
	src := testkit.NewStaticSource(core.NewSourceID("s", "0"), fixtureTable())
	srv := newTestServer(t, src)

	var health map[string]interface{}
	getJSON(t, srv.URL+"/health", &health)
	assert.Equal(t, false, health["loaded"])
	assert.Equal(t, 0, src.Calls(), "health must not trigger a load")

	resp, err := http.Post(srv.URL+"/refresh", "application/json", nil)
	require.NoError(t, err)
	var refreshed refreshResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&refreshed))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, refreshed.Rows)
	assert.Equal(t, 1, src.Calls())

	getJSON(t, srv.URL+"/health", &health)
	assert.Equal(t, true, health["loaded"])

	var report order.LoadReport
	getJSON(t, srv.URL+"/report", &report)
	assert.Equal(t, 3, report.SourceRows)
	assert.Equal(t, 1, src.Calls(), "report is served from the cache")
}

func TestListStatuses(t *testing.T) {
	srv := newTestServer(t, testkit.NewStaticSource(core.NewSourceID("s", "0"), fixtureTable()))

	var body statusesResponse
	resp := getJSON(t, srv.URL+"/statuses", &body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.FallbackPrefix, body.FallbackPrefix)
	assert.Equal(t, "💰 Pagado", body.Markers.Paid)
	assert.NotEmpty(t, body.Order)
	assert.NotEmpty(t, body.Payment)
}

func TestOversizedTotalStillEncodes(t *testing.T) {
	table := fixtureTable()
	table.Rows = append(table.Rows, order.RawRow{
		order.ColDate: "05/01/2024 08:00:00", order.ColCode: "B4",
		order.ColTotal: "$ " + strings.Repeat("9", 400), order.ColOrderStatus: "Nuevo",
	})
	srv := newTestServer(t, testkit.NewStaticSource(core.NewSourceID("s", "0"), table))

	var orders ordersResponse
	resp := getJSON(t, srv.URL+"/orders", &orders)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 4, orders.Count)
	assert.Equal(t, "B4", orders.Rows[0].Code)
	assert.Equal(t, 0.0, orders.Rows[0].Total)

	var summary summaryResponse
	resp = getJSON(t, srv.URL+"/summary", &summary)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.InDelta(t, 2110.5, summary.Summary.Totals.Sum, 1e-9)

	var report order.LoadReport
	getJSON(t, srv.URL+"/report", &report)
	assert.Equal(t, 1, report.UnparsedTotals)
}

func TestUnknownFilterLabel(t *testing.T) {
	srv := newTestServer(t, testkit.NewStaticSource(core.NewSourceID("s", "0"), fixtureTable()))

	tests := []struct {
		name  string
		query url.Values
	}{
		{"order status", url.Values{"order_status": {"🛸 Abducido"}}},
		{"payment status", url.Values{"payment_status": {"nope"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, path := range []string{"/orders", "/summary"} {
				var body errorResponse
				resp := getJSON(t, srv.URL+path+"?"+tt.query.Encode(), &body)
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
				assert.Equal(t, errors.CodeInvalidInput, body.Code, path)
			}
		})
	}
}

func TestWriteJSONEncodingFailure(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, map[string]float64{"total": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body errorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, errors.CodeInternalError, body.Code)
}
