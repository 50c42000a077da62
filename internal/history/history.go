// Package history turns the sparse day and month aggregate buckets into dense
// series with one entry per calendar unit.
package history

import (
	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/util"
)

const monthsInYear = 12

// Point is one entry of a dense series. Day is zero for year series.
type Point struct {
	Year    int   `json:"year"`
	Month   int   `json:"month"`
	Day     int   `json:"day,omitempty"`
	Expense int64 `json:"expense"`
}

// Year returns one point per month of year, zero filled. A year without any
// bucket yields an empty series, not twelve zeros.
func Year(year int, sparse []storage.MonthlyTotal) []Point {
	byMonth := make(map[int]int64, len(sparse))
	for _, total := range sparse {
		if total.Year != year {
			continue
		}
		byMonth[total.Month] += total.Expense
	}

	if len(byMonth) == 0 {
		return []Point{}
	}

	points := make([]Point, 0, monthsInYear)
	for month := 1; month <= monthsInYear; month++ {
		points = append(points, Point{Year: year, Month: month, Expense: byMonth[month]})
	}

	return points
}

// Month returns one point per calendar day of month, zero filled. A month
// without any bucket yields an empty series.
func Month(year, month int, sparse []storage.DailyTotal) []Point {
	byDay := make(map[int]int64, len(sparse))
	for _, total := range sparse {
		if total.Year != year || total.Month != month {
			continue
		}
		byDay[total.Day] += total.Expense
	}

	if len(byDay) == 0 {
		return []Point{}
	}

	days := util.DaysInMonth(year, month)
	points := make([]Point, 0, days)
	for day := 1; day <= days; day++ {
		points = append(points, Point{Year: year, Month: month, Day: day, Expense: byDay[day]})
	}

	return points
}

// Sum adds up the expense of every point.
func Sum(points []Point) int64 {
	var total int64
	for _, p := range points {
		total += p.Expense
	}
	return total
}
