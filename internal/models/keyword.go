package models

// Keyword is one input row: a search keyword and its traffic figures.
type Keyword struct {
	Title        string  `json:"title"`
	Views        int     `json:"views"`
	ViewsPerYear float64 `json:"views_per_year"`
}

// ClassifiedKeyword pairs a source keyword row with the decision made for it.
type ClassifiedKeyword struct {
	Keyword  Keyword  `json:"keyword"`
	Decision Decision `json:"decision"`
}
