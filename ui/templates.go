package ui

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"orderboard/domain/order"
)

var countPrinter = message.NewPrinter(language.MustParse("es-AR"))

// funcMap holds the display helpers used by the board templates
func (s *Server) funcMap() template.FuncMap {
	return template.FuncMap{
		"money":  formatMoney,
		"count":  formatCount,
		"date":   s.formatDate,
		"ago":    loadedAgo,
		"report": renderReport,
	}
}

// formatMoney renders an amount the way the sheet's users write it: $ 1.234,56
func formatMoney(v float64) string {
	return "$ " + humanize.FormatFloat("#.###,##", v)
}

func formatCount(n int) string {
	return countPrinter.Sprintf("%d", n)
}

// formatDate shows the parsed date in the board's zone, or the raw text when
// the date did not parse
func (s *Server) formatDate(r order.Row) string {
	if r.DateParsed == nil {
		return r.DateRaw
	}
	return r.DateParsed.In(s.location).Format("02/01/2006 15:04")
}

func loadedAgo(t time.Time) string {
	if t.IsZero() {
		return "nunca"
	}
	return humanize.Time(t)
}

// reportMarkdown writes the anomalies of a load as a markdown list
func reportMarkdown(r *order.LoadReport) string {
	if r == nil || !r.HasAnomalies() {
		return ""
	}
	var b strings.Builder
	b.WriteString("**Observaciones de la carga**\n\n")
	if r.DroppedEmptyRows > 0 {
		fmt.Fprintf(&b, "- %s filas vacías descartadas\n", formatCount(r.DroppedEmptyRows))
	}
	if len(r.MissingColumns) > 0 {
		fmt.Fprintf(&b, "- Columnas ausentes: %s\n", codeList(r.MissingColumns))
	}
	if r.UnparsedDates > 0 {
		fmt.Fprintf(&b, "- %s fechas sin interpretar\n", formatCount(r.UnparsedDates))
	}
	if r.UnparsedTotals > 0 {
		fmt.Fprintf(&b, "- %s totales sin interpretar\n", formatCount(r.UnparsedTotals))
	}
	if len(r.UnknownOrderStatuses) > 0 {
		fmt.Fprintf(&b, "- Estados de pedido desconocidos: %s\n", codeList(r.UnknownOrderStatuses))
	}
	if len(r.UnknownPaymentStatuses) > 0 {
		fmt.Fprintf(&b, "- Estados de pago desconocidos: %s\n", codeList(r.UnknownPaymentStatuses))
	}
	return b.String()
}

// codeList wraps sheet values in code spans so they render literally
func codeList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "`" + strings.ReplaceAll(v, "`", "'") + "`"
	}
	return strings.Join(quoted, ", ")
}

// renderReport converts the report markdown to HTML. Raw HTML in the input
// is dropped.
func renderReport(r *order.LoadReport) template.HTML {
	md := reportMarkdown(r)
	if md == "" {
		return ""
	}
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), nil, renderer))
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data interface{}) {
	// First render to a buffer to catch any errors before writing to response
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(status)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Error("error writing template response: %v", err)
	}
}
