package models

import "math"

// Statistics summarizes the decisions of one job.
type Statistics struct {
	Total             int            `json:"total"`
	Accepted          int            `json:"accepted"`
	Rejected          int            `json:"rejected"`
	AcceptanceRate    float64        `json:"acceptance_rate"`
	CategoryBreakdown map[string]int `json:"category_breakdown"`
}

// Percentage returns part/total*100 rounded to two decimals, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*100*100) / 100
}
