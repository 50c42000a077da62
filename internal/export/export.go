// Package export writes a user's expenses and history to CSV or XLSX.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/controlai/controlai/internal/history"
	"github.com/controlai/controlai/internal/storage"
)

const (
	centsToDecimal = 100.0
	decimalPlaces  = 2
	base10         = 10
	dateLayout     = "2006-01-02"

	expensesSheet = "Expenses"
	historySheet  = "History"
)

type Data struct {
	Expenses   []storage.Expense
	Categories []storage.Category
	Series     []history.Point
}

var expenseHeader = []string{"ID", "Date", "Description", "Category", "Amount"}

// CSV writes the expenses in data, one row per expense.
func CSV(writer io.Writer, data Data) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	records := make([][]string, 0, len(data.Expenses)+1)
	records = append(records, expenseHeader)

	names := categoryNames(data.Categories)
	for _, expense := range data.Expenses {
		records = append(records, []string{
			strconv.FormatInt(expense.ID(), base10),
			expense.Date().UTC().Format(dateLayout),
			expense.Description(),
			names[expense.CategoryID()],
			formatAmount(expense.Amount()),
		})
	}

	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write CSV records: %w", err)
	}

	return nil
}

// XLSX writes a workbook with an Expenses sheet and a History sheet holding
// the dense series.
func XLSX(writer io.Writer, data Data) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), expensesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	for i, title := range expenseHeader {
		if err := setCell(f, expensesSheet, i+1, 1, title); err != nil {
			return err
		}
	}

	names := categoryNames(data.Categories)
	for i, expense := range data.Expenses {
		row := i + 2
		values := []any{
			expense.ID(),
			expense.Date().UTC().Format(dateLayout),
			expense.Description(),
			names[expense.CategoryID()],
			float64(expense.Amount()) / centsToDecimal,
		}
		for col, value := range values {
			if err := setCell(f, expensesSheet, col+1, row, value); err != nil {
				return err
			}
		}
	}

	if _, err := f.NewSheet(historySheet); err != nil {
		return fmt.Errorf("failed to create history sheet: %w", err)
	}

	for i, title := range []string{"Year", "Month", "Day", "Expense"} {
		if err := setCell(f, historySheet, i+1, 1, title); err != nil {
			return err
		}
	}

	for i, point := range data.Series {
		row := i + 2
		values := []any{point.Year, point.Month, point.Day, float64(point.Expense) / centsToDecimal}
		if point.Day == 0 {
			values[2] = ""
		}
		for col, value := range values {
			if err := setCell(f, historySheet, col+1, row, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(writer); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell %d,%d: %w", col, row, err)
	}

	if err = f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("failed to set %s!%s: %w", sheet, cell, err)
	}

	return nil
}

func categoryNames(categories []storage.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID()] = c.Name()
	}
	return names
}

func formatAmount(amount int64) string {
	return strconv.FormatFloat(float64(amount)/centsToDecimal, 'f', decimalPlaces, 64)
}
