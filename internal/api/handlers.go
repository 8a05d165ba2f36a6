package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"orderboard/domain/order"
	"orderboard/internal"
	"orderboard/internal/errors"
	"orderboard/ports"
)

// Handler serves the order board as JSON
type Handler struct {
	board  ports.BoardPort
	logger *internal.Logger
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type ordersResponse struct {
	Rows     []order.Row  `json:"rows"`
	Count    int          `json:"count"`
	Filter   order.Filter `json:"filter"`
	LoadID   string       `json:"load_id"`
	LoadedAt time.Time    `json:"loaded_at"`
}

type summaryResponse struct {
	Summary       order.Summary `json:"summary"`
	Filter        order.Filter  `json:"filter"`
	OrderLabels   []string      `json:"order_labels"`
	PaymentLabels []string      `json:"payment_labels"`
}

type statusesResponse struct {
	Order          []order.StatusEntry `json:"order"`
	Payment        []order.StatusEntry `json:"payment"`
	Markers        order.Markers       `json:"markers"`
	FallbackPrefix string              `json:"fallback_prefix"`
}

type refreshResponse struct {
	LoadID      string    `json:"load_id"`
	Rows        int       `json:"rows"`
	LoadedAt    time.Time `json:"loaded_at"`
	Fingerprint string    `json:"fingerprint"`
}

// filterFromQuery reads order_status and payment_status
func filterFromQuery(r *http.Request) order.Filter {
	q := r.URL.Query()
	return order.Filter{
		OrderStatus:   strings.TrimSpace(q.Get("order_status")),
		PaymentStatus: strings.TrimSpace(q.Get("payment_status")),
	}
}

// validateFilter rejects labels that no row of the dataset carries
func validateFilter(v order.View) error {
	if v.Filter.OrderStatus != "" && !slices.Contains(v.OrderLabels, v.Filter.OrderStatus) {
		return errors.InvalidInput(fmt.Sprintf("unknown order_status %q", v.Filter.OrderStatus))
	}
	if v.Filter.PaymentStatus != "" && !slices.Contains(v.PaymentLabels, v.Filter.PaymentStatus) {
		return errors.InvalidInput(fmt.Sprintf("unknown payment_status %q", v.Filter.PaymentStatus))
	}
	return nil
}

// ListOrders returns the filtered, sorted rows
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	v := h.board.View(r.Context(), filterFromQuery(r))
	if v.Failed() {
		writeError(w, http.StatusServiceUnavailable, errors.CodeFetchError, v.Error)
		return
	}
	if err := validateFilter(v); err != nil {
		h.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ordersResponse{
		Rows:     v.Rows,
		Count:    len(v.Rows),
		Filter:   v.Filter,
		LoadID:   v.LoadID,
		LoadedAt: v.LoadedAt,
	})
}

// GetSummary returns the aggregates for the filtered rows.
// A failed load answers with zero counts and the error header.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	v := h.board.View(r.Context(), filterFromQuery(r))
	status := http.StatusOK
	if v.Failed() {
		w.Header().Set("X-Load-Error", v.Error)
		status = http.StatusServiceUnavailable
	} else if err := validateFilter(v); err != nil {
		h.writeAppError(w, err)
		return
	}
	writeJSON(w, status, summaryResponse{
		Summary:       v.Summary,
		Filter:        v.Filter,
		OrderLabels:   v.OrderLabels,
		PaymentLabels: v.PaymentLabels,
	})
}

// ListStatuses returns the lookup tables
func (h *Handler) ListStatuses(w http.ResponseWriter, r *http.Request) {
	t := h.board.Tables()
	writeJSON(w, http.StatusOK, statusesResponse{
		Order:          t.Order.Entries(),
		Payment:        t.Payment.Entries(),
		Markers:        t.Markers,
		FallbackPrefix: order.FallbackPrefix,
	})
}

// GetReport returns the anomalies of the current load
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ds, err := h.board.Dataset(r.Context())
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ds.Report)
}

// GetHealth reports cache state without triggering a load
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.CacheState())
}

// Refresh reloads the dataset from the source
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	ds, err := h.board.Refresh(r.Context())
	if err != nil {
		h.writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		LoadID:      ds.LoadID.String(),
		Rows:        ds.Len(),
		LoadedAt:    ds.LoadedAt,
		Fingerprint: ds.Fingerprint.String(),
	})
}

func (h *Handler) writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeFetchError:
		status = http.StatusServiceUnavailable
	case errors.CodeInvalidInput:
		status = http.StatusBadRequest
	}
	h.logger.Error("request failed (%s): %v", code, err)
	writeError(w, status, code, err.Error())
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeJSON encodes body before writing the header so an encoding failure
// becomes a 500 instead of an empty success
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	payload, err := json.Marshal(body)
	if err != nil {
		internal.DefaultLogger.Error("failed to encode response: %v", err)
		appErr := errors.InternalError("failed to encode response")
		w.Header().Del("X-Load-Error")
		writeError(w, http.StatusInternalServerError, appErr.Code, appErr.Message)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(append(payload, '\n')); err != nil {
		internal.DefaultLogger.Error("failed to write response: %v", err)
	}
}
