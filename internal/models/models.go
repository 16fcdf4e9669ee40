package models

import "time"

// Category labels a report section. The label text is part of the output format.
type Category string

const (
	MaxTemperature Category = "Max Temperature"
	MinTemperature Category = "Min Temperature"
	MaxHumidity    Category = "Max Humidity"
	MinHumidity    Category = "Min Humidity"
)

// Categories lists the report sections in output order.
var Categories = []Category{MaxTemperature, MinTemperature, MaxHumidity, MinHumidity}

// RowEntry is one winner of a monthly extreme: the reading date and its value.
type RowEntry struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Extremes holds the entries attaining the monthly maximum and minimum,
// in row order.
type Extremes struct {
	Max []RowEntry `json:"max"`
	Min []RowEntry `json:"min"`
}

// Monthly maps every calendar month to its entries.
type Monthly map[time.Month][]RowEntry

// Report is the answer to one (year, station) query.
type Report struct {
	Year       int                  `json:"year"`
	Station    string               `json:"station"`
	Categories map[Category]Monthly `json:"categories"`
}

// ResultRow is the flattened form written by the result writers.
type ResultRow struct {
	Date     string   `json:"date"`
	Station  string   `json:"station"`
	Category Category `json:"category"`
	Value    float64  `json:"value"`
}

// Rows flattens the report category by category, January to December,
// keeping tie order inside each month.
func (r *Report) Rows() []ResultRow {
	rows := make([]ResultRow, 0)
	for _, cat := range Categories {
		monthly, ok := r.Categories[cat]
		if !ok {
			continue
		}
		for m := time.January; m <= time.December; m++ {
			for _, e := range monthly[m] {
				rows = append(rows, ResultRow{
					Date:     e.Date,
					Station:  r.Station,
					Category: cat,
					Value:    e.Value,
				})
			}
		}
	}
	return rows
}
