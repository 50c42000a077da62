// Package report summarises a user's spending for a month or a year and
// renders it as terminal tables.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/history"
	"github.com/controlai/controlai/internal/util"
)

const percentageOfTotal = 100

type Category struct {
	Name              string
	Icon              string
	Amount            int64
	PercentageOfTotal float64
}

type Report struct {
	Title                 string
	StartDate             time.Time
	EndDate               time.Time
	Spending              int64
	AverageSpendingPerDay int64
	Series                []history.Point
	Categories            []Category
}

// Generate builds the report of month in year, or of the whole year when
// month is zero.
func Generate(ctx context.Context, expenses *expense.Service, userID int64, year, month int) (Report, error) {
	var report Report

	if month == 0 {
		report.Title = strconv.Itoa(year)
		report.StartDate, report.EndDate = util.GetYearDates(year)
	} else {
		report.StartDate, report.EndDate = util.GetMonthDates(month, year)
		report.Title = fmt.Sprintf("%s %d", report.StartDate.Month().String(), year)
	}

	timeframe := expense.TimeframeYear
	if month != 0 {
		timeframe = expense.TimeframeMonth
	}

	series, err := expenses.History(ctx, userID, year, timeframe, month)
	if err != nil {
		return report, err
	}
	report.Series = series

	spending, err := expenses.Total(ctx, userID, report.StartDate, report.EndDate)
	if err != nil {
		return report, err
	}
	report.Spending = spending
	report.AverageSpendingPerDay = spending / int64(calendarDays(report.StartDate, report.EndDate))

	totals, err := expenses.PerCategory(ctx, userID, report.StartDate, report.EndDate)
	if err != nil {
		return report, err
	}

	for _, total := range totals {
		category := Category{
			Name:   total.CategoryName,
			Icon:   total.CategoryIcon,
			Amount: total.Total,
		}
		if spending > 0 {
			category.PercentageOfTotal = float64(total.Total*percentageOfTotal) / float64(spending)
		}
		report.Categories = append(report.Categories, category)
	}

	return report, nil
}

// Render writes the series and the category breakdown. The busiest period is
// highlighted in red and empty periods are dimmed.
func Render(w io.Writer, report Report) {
	fmt.Fprintf(w, "%s\n\n", util.ColorOutput(report.Title, "bold"))

	if len(report.Series) == 0 {
		fmt.Fprintln(w, util.ColorOutput("No expenses recorded", "faint"))
		return
	}

	var peak int64
	for _, p := range report.Series {
		peak = max(peak, p.Expense)
	}

	series := table.NewWriter()
	series.SetOutputMirror(w)
	series.AppendHeader(table.Row{"Period", "Spent"})

	for _, p := range report.Series {
		amount := util.FormatAmount(p.Expense)
		switch {
		case p.Expense == 0:
			amount = util.ColorOutput(amount, "faint")
		case p.Expense == peak:
			amount = util.ColorOutput(amount, "red", "bold")
		}
		series.AppendRow(table.Row{periodLabel(p), amount})
	}

	series.AppendSeparator()
	series.AppendFooter(table.Row{
		text.Bold.Sprint("Total"),
		text.Bold.Sprint(util.FormatAmount(report.Spending)),
	})
	series.SetStyle(table.StyleRounded)
	series.Style().Format.Header = text.FormatDefault
	series.Style().Format.Footer = text.FormatDefault
	series.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	series.Render()

	fmt.Fprintf(w, "\nAverage per day: %s\n\n", util.ColorOutput(util.FormatAmount(report.AverageSpendingPerDay), "yellow"))

	if len(report.Categories) == 0 {
		return
	}

	categories := table.NewWriter()
	categories.SetOutputMirror(w)
	categories.AppendHeader(table.Row{"", "Category", "Spent", "Share"})
	for _, c := range report.Categories {
		categories.AppendRow(table.Row{
			c.Icon,
			c.Name,
			util.FormatAmount(c.Amount),
			fmt.Sprintf("%.1f%%", c.PercentageOfTotal),
		})
	}
	categories.SetStyle(table.StyleRounded)
	categories.Style().Format.Header = text.FormatDefault
	categories.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	categories.Render()
}

func periodLabel(p history.Point) string {
	if p.Day == 0 {
		return time.Month(p.Month).String()
	}
	return fmt.Sprintf("%04d-%02d-%02d", p.Year, p.Month, p.Day)
}

const hoursInDay = 24

// calendarDays returns the number of calendar days covered by [t1, t2].
func calendarDays(t1, t2 time.Time) int {
	y, m, d := t2.Date()
	u2 := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	y, m, d = t1.In(t2.Location()).Date()
	u1 := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	days := u2.Sub(u1) / (hoursInDay * time.Hour)
	return int(days) + 1
}
