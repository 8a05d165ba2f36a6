package order

import "time"

// TotalsProfile describes the distribution of order totals in a view
type TotalsProfile struct {
	Count    int       `json:"count"`
	Sum      float64   `json:"sum"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	Mean     float64   `json:"mean"`
	Median   float64   `json:"median"`
	Q25      float64   `json:"q25"`
	Q75      float64   `json:"q75"`
	Outliers int       `json:"outliers"`
	Samples  []float64 `json:"samples"`
}

// Summary holds the aggregate counts shown above the table
type Summary struct {
	TotalRows int           `json:"total_rows"`
	NewOrders int           `json:"new_orders"`
	InTransit int           `json:"in_transit"`
	Delivered int           `json:"delivered"`
	Paid      int           `json:"paid"`
	Totals    TotalsProfile `json:"totals"`
}

// CountStatuses fills the row counters of a summary for rows
func CountStatuses(rows []Row, m Markers) Summary {
	s := Summary{TotalRows: len(rows)}
	for _, r := range rows {
		if m.IsNewOrder(r.OrderStatusLabel) {
			s.NewOrders++
		}
		if r.OrderStatusLabel == m.InTransit {
			s.InTransit++
		}
		if r.OrderStatusLabel == m.Delivered {
			s.Delivered++
		}
		if r.PaymentStatusLabel == m.Paid {
			s.Paid++
		}
	}
	return s
}

// View is what the presentation layer renders: a filtered, sorted slice of
// the current dataset with its summary, or an empty state when loading failed.
type View struct {
	Rows          []Row       `json:"rows"`
	Summary       Summary     `json:"summary"`
	Filter        Filter      `json:"filter"`
	OrderLabels   []string    `json:"order_labels"`
	PaymentLabels []string    `json:"payment_labels"`
	LoadID        string      `json:"load_id,omitempty"`
	LoadedAt      time.Time   `json:"loaded_at,omitempty"`
	Report        *LoadReport `json:"report,omitempty"`
	Error         string      `json:"error,omitempty"`
}

// Empty reports whether the view has nothing to show
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// Failed reports whether the view is the empty state of a failed load
func (v View) Failed() bool {
	return v.Error != ""
}

// EmptyView is the zero-count result for a failed or empty load
func EmptyView(f Filter, reason string) View {
	return View{Rows: []Row{}, Filter: f, Error: reason}
}
