package feed

// Issue describes one problem found in a feed row. Row is 1-based and counts
// the header, so it matches the spreadsheet row number.
type Issue struct {
	Row    int    `json:"row"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// Report summarizes one parse.
type Report struct {
	Total   int     `json:"total_rows"`
	Valid   int     `json:"valid_rows"`
	Invalid int     `json:"invalid_rows"`
	Issues  []Issue `json:"issues,omitempty"`
}

func (r *Report) note(row int, field, reason string) {
	r.Issues = append(r.Issues, Issue{Row: row, Field: field, Reason: reason})
}
