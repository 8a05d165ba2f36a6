package ui

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"orderboard/domain/order"
	"orderboard/ports"
)

// Query parameters of the HTML board
const (
	paramOrderStatus   = "estado_pedido"
	paramPaymentStatus = "estado_pago"
)

// boardPage is the data behind index.html
type boardPage struct {
	View       order.View
	Markers    order.Markers
	State      ports.CacheState
	FilterArgs string
}

func filterFromContext(c *gin.Context) order.Filter {
	return order.Filter{
		OrderStatus:   strings.TrimSpace(c.Query(paramOrderStatus)),
		PaymentStatus: strings.TrimSpace(c.Query(paramPaymentStatus)),
	}
}

func filterFromForm(c *gin.Context) order.Filter {
	return order.Filter{
		OrderStatus:   strings.TrimSpace(c.PostForm(paramOrderStatus)),
		PaymentStatus: strings.TrimSpace(c.PostForm(paramPaymentStatus)),
	}
}

// filterArgs encodes f as board query parameters, empty fields omitted
func filterArgs(f order.Filter) string {
	q := url.Values{}
	if f.OrderStatus != "" {
		q.Set(paramOrderStatus, f.OrderStatus)
	}
	if f.PaymentStatus != "" {
		q.Set(paramPaymentStatus, f.PaymentStatus)
	}
	return q.Encode()
}

func (s *Server) page(v order.View) boardPage {
	return boardPage{
		View:       v,
		Markers:    s.board.Tables().Markers,
		State:      s.board.CacheState(),
		FilterArgs: filterArgs(v.Filter),
	}
}

// handleIndex renders the board for the filters in the query string
func (s *Server) handleIndex(c *gin.Context) {
	v := s.board.View(c.Request.Context(), filterFromContext(c))
	status := http.StatusOK
	if v.Failed() {
		status = http.StatusServiceUnavailable
	}
	s.renderTemplate(c, status, "index.html", s.page(v))
}

// handleRefresh reloads the dataset and sends the browser back to the same
// filters. A failed reload renders the empty state directly.
func (s *Server) handleRefresh(c *gin.Context) {
	f := filterFromForm(c)
	if _, err := s.board.Refresh(c.Request.Context()); err != nil {
		s.logger.Error("refresh failed: %v", err)
		s.renderTemplate(c, http.StatusServiceUnavailable, "index.html", s.page(order.EmptyView(f, err.Error())))
		return
	}

	target := "/"
	if args := filterArgs(f); args != "" {
		target += "?" + args
	}
	c.Redirect(http.StatusSeeOther, target)
}

// csvHeader is the column order of the CSV download
var csvHeader = []string{
	order.ColDate, order.ColCode, order.ColClient, order.ColTotal, order.ColType,
	order.ColOrderStatus, order.ColPaymentStatus, order.ColConfirmation, order.ColClaim, order.ColInvoice,
}

// handleExportCSV downloads the filtered view with translated labels
func (s *Server) handleExportCSV(c *gin.Context) {
	v := s.board.View(c.Request.Context(), filterFromContext(c))
	if v.Failed() {
		c.String(http.StatusServiceUnavailable, "no se pudieron cargar los pedidos: %s", v.Error)
		return
	}

	filename := fmt.Sprintf("pedidos-%s.csv", v.LoadedAt.In(s.location).Format("20060102-1504"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.Write(csvHeader); err != nil {
		s.logger.Error("csv export failed: %v", err)
		return
	}
	for _, r := range v.Rows {
		record := []string{
			s.formatDate(r),
			r.Code,
			r.Client,
			strconv.FormatFloat(r.Total, 'f', 2, 64),
			r.Type,
			r.OrderStatusLabel,
			r.PaymentStatusLabel,
			r.Confirmation,
			r.Claim,
			r.Invoice,
		}
		if err := w.Write(record); err != nil {
			s.logger.Error("csv export failed: %v", err)
			return
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		s.logger.Error("csv export failed: %v", err)
	}
}

// handleHealth reports the cache state without loading
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  s.board.CacheState(),
	})
}
