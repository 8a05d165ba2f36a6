package order

import (
	_ "embed"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"orderboard/domain/core"
)

// EmptyStatusKey is the lookup key used for blank status cells
const EmptyStatusKey = "empty"

// FallbackPrefix marks labels synthesized for codes with no table entry.
// No table label may start with it.
const FallbackPrefix = "❓ "

//go:embed status_tables.yaml
var defaultStatusTables []byte

// StatusEntry maps one raw code to its display label
type StatusEntry struct {
	Code  string `yaml:"code" json:"code"`
	Label string `yaml:"label" json:"label"`
}

// StatusLookup is an immutable raw code to label table
type StatusLookup struct {
	name    string
	labels  map[string]string
	order   []string
	entries []StatusEntry
}

// NewStatusLookup validates entries and builds a lookup. Codes are trimmed;
// duplicate codes and labels carrying the fallback prefix are rejected.
func NewStatusLookup(name string, entries []StatusEntry) (*StatusLookup, error) {
	if len(entries) == 0 {
		return nil, core.NewStatusTableError(name, "no entries")
	}

	l := &StatusLookup{name: name, labels: make(map[string]string, len(entries))}
	seen := make(map[string]bool)
	for _, e := range entries {
		code := strings.TrimSpace(e.Code)
		if code == "" {
			return nil, core.NewStatusTableError(name, "blank code")
		}
		if e.Label == "" {
			return nil, core.NewStatusTableError(name, "blank label for "+code)
		}
		if strings.HasPrefix(e.Label, FallbackPrefix) {
			return nil, core.NewStatusTableError(name, "label "+e.Label+" uses the fallback prefix")
		}
		if _, dup := l.labels[code]; dup {
			return nil, core.NewStatusTableError(name, "duplicate code "+code)
		}
		l.labels[code] = e.Label
		l.entries = append(l.entries, StatusEntry{Code: code, Label: e.Label})
		if !seen[e.Label] {
			seen[e.Label] = true
			l.order = append(l.order, e.Label)
		}
	}
	if _, ok := l.labels[EmptyStatusKey]; !ok {
		return nil, core.NewStatusTableError(name, "missing entry for "+EmptyStatusKey)
	}
	return l, nil
}

// Name returns the table name
func (l *StatusLookup) Name() string {
	return l.name
}

// Lookup translates a raw status. Blank input uses the "empty" key and
// unknown codes yield FallbackPrefix followed by the trimmed raw value.
func (l *StatusLookup) Lookup(raw string) string {
	label, _ := l.Translate(raw)
	return label
}

// Translate is Lookup that also reports whether the code was known
func (l *StatusLookup) Translate(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	if key == "" {
		key = EmptyStatusKey
	}
	if label, ok := l.labels[key]; ok {
		return label, true
	}
	return FallbackPrefix + key, false
}

// Labels returns the distinct labels in table order
func (l *StatusLookup) Labels() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Entries returns the code to label pairs in table order
func (l *StatusLookup) Entries() []StatusEntry {
	out := make([]StatusEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Has reports whether label is produced by some table entry
func (l *StatusLookup) Has(label string) bool {
	for _, lb := range l.order {
		if lb == label {
			return true
		}
	}
	return false
}

// Markers identifies the labels counted in the summary
type Markers struct {
	NewOrderPrefix string `yaml:"new_order_prefix" json:"new_order_prefix"`
	InTransit      string `yaml:"in_transit" json:"in_transit"`
	Delivered      string `yaml:"delivered" json:"delivered"`
	Paid           string `yaml:"paid" json:"paid"`
}

// StatusTables bundles the order and payment lookups with summary markers
type StatusTables struct {
	Order   *StatusLookup
	Payment *StatusLookup
	Markers Markers
}

type statusTablesFile struct {
	Markers Markers       `yaml:"markers"`
	Order   []StatusEntry `yaml:"order"`
	Payment []StatusEntry `yaml:"payment"`
}

// DefaultStatusTables returns the built-in tables
func DefaultStatusTables() (*StatusTables, error) {
	return ParseStatusTables(defaultStatusTables)
}

// LoadStatusTables reads tables from a YAML file, or the built-in ones when path is empty
func LoadStatusTables(path string) (*StatusTables, error) {
	if path == "" {
		return DefaultStatusTables()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewStatusTableError(path, err.Error())
	}
	return ParseStatusTables(data)
}

// ParseStatusTables decodes and validates a YAML table document
func ParseStatusTables(data []byte) (*StatusTables, error) {
	var f statusTablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, core.NewStatusTableError("document", err.Error())
	}

	orderLookup, err := NewStatusLookup("order", f.Order)
	if err != nil {
		return nil, err
	}
	paymentLookup, err := NewStatusLookup("payment", f.Payment)
	if err != nil {
		return nil, err
	}

	m := f.Markers
	switch {
	case m.NewOrderPrefix == "":
		return nil, core.NewStatusTableError("markers", "new_order_prefix is required")
	case !orderLookup.Has(m.InTransit):
		return nil, core.NewStatusTableError("markers", "in_transit "+m.InTransit+" is not an order label")
	case !orderLookup.Has(m.Delivered):
		return nil, core.NewStatusTableError("markers", "delivered "+m.Delivered+" is not an order label")
	case !paymentLookup.Has(m.Paid):
		return nil, core.NewStatusTableError("markers", "paid "+m.Paid+" is not a payment label")
	}

	return &StatusTables{Order: orderLookup, Payment: paymentLookup, Markers: m}, nil
}

// IsNewOrder reports whether an order label starts with the new-order marker
func (m Markers) IsNewOrder(label string) bool {
	return strings.HasPrefix(label, m.NewOrderPrefix)
}
