package http

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"rewards/internal/core"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// isoDate renders d for an <input type="date">.
func isoDate(d core.Date) string {
	return d.String()
}

var templateFuncs = template.FuncMap{
	"currency":  core.FormatCurrency,
	"date":      core.FormatDate,
	"monthName": core.FormatMonthName,
	"isoDate":   isoDate,
	"points":    core.CalculateRewardPoints,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}
