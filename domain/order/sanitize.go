package order

import "strings"

// Sanitize turns empty (or whitespace-only) values into Null and drops rows
// whose every field is Null. It returns the kept rows and how many were dropped.
func Sanitize(table RawTable) ([]SanitizedRow, int) {
	rows := make([]SanitizedRow, 0, len(table.Rows))
	dropped := 0

	for _, raw := range table.Rows {
		row := make(SanitizedRow, len(raw))
		empty := true
		for key, val := range raw {
			val = strings.TrimSpace(val)
			if val == "" {
				row[key] = Null
				continue
			}
			row[key] = Value(val)
			empty = false
		}
		if empty {
			dropped++
			continue
		}
		rows = append(rows, row)
	}

	return rows, dropped
}
