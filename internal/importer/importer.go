// Package importer loads expenses from CSV or JSON statements. Every row goes
// through expense.Service so history buckets stay in step.
package importer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/controlai/controlai/internal/category"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/logger"
	"github.com/controlai/controlai/internal/storage"
)

// DefaultIcon is used for categories created while importing.
const DefaultIcon = "📦"

var amountRe = regexp.MustCompile(`^[-+]?(?P<units>\d+)(?:[.,](?P<decimal>\d{1,2}))?$`)
var unitsIdx = amountRe.SubexpIndex("units")
var decimalIdx = amountRe.SubexpIndex("decimal")

// maxUnits keeps units*100 plus two decimal digits within int64.
const maxUnits = (math.MaxInt64 - 99) / 100

const defaultDateFormat = "02/01/2006"

var fallbackFormats = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// FieldMapping tells which column holds each expense field.
type FieldMapping struct {
	DateColumn        int
	DescriptionColumn int
	AmountColumn      int
	CategoryColumn    int
}

// DefaultMapping finds the columns by their header names: date,
// description, amount and category.
func DefaultMapping(data *ParsedData) (FieldMapping, error) {
	mapping := FieldMapping{
		DateColumn:        data.Column("date"),
		DescriptionColumn: data.Column("description"),
		AmountColumn:      data.Column("amount"),
		CategoryColumn:    data.Column("category"),
	}

	return mapping, mapping.Validate(len(data.Headers))
}

func (m FieldMapping) Validate(headerCount int) error {
	columns := []struct {
		name  string
		index int
	}{
		{"date", m.DateColumn},
		{"description", m.DescriptionColumn},
		{"amount", m.AmountColumn},
		{"category", m.CategoryColumn},
	}

	for _, c := range columns {
		if c.index < 0 || c.index >= headerCount {
			return fmt.Errorf("invalid %s column index: %d", c.name, c.index)
		}
	}

	return nil
}

type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

type Result struct {
	Imported          int
	CategoriesCreated int
	Errors            []RowError
}

type Importer struct {
	expenses   *expense.Service
	categories *category.Service
	logger     *logger.Logger
}

func New(expenses *expense.Service, categories *category.Service, logger *logger.Logger) *Importer {
	return &Importer{expenses: expenses, categories: categories, logger: logger}
}

// Import records one expense per row. A bad row is reported and skipped;
// only a failure to read the user's categories aborts the whole import.
// Row numbers in the result are 1-based data rows.
func (i *Importer) Import(ctx context.Context, userID int64, data *ParsedData, mapping FieldMapping) (Result, error) {
	var result Result

	if err := mapping.Validate(len(data.Headers)); err != nil {
		return result, fmt.Errorf("invalid mapping: %w", err)
	}

	existing, err := i.categories.List(ctx, userID)
	if err != nil {
		return result, err
	}

	byName := make(map[string]int64, len(existing))
	for _, c := range existing {
		byName[strings.ToLower(c.Name())] = c.ID()
	}

	for idx, row := range data.Rows {
		rowNumber := idx + 1

		if err = ctx.Err(); err != nil {
			return result, err
		}

		input, categoryName, rowErr := mapRow(row, mapping)
		if rowErr != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNumber, Err: rowErr})
			continue
		}

		categoryID, ok := byName[strings.ToLower(categoryName)]
		if !ok {
			var created storage.Category
			created, err = i.categories.Create(ctx, userID, categoryName, DefaultIcon)
			if err != nil {
				result.Errors = append(result.Errors, RowError{Row: rowNumber, Err: err})
				continue
			}
			categoryID = created.ID()
			byName[strings.ToLower(created.Name())] = categoryID
			result.CategoriesCreated++
		}
		input.CategoryID = categoryID

		if _, err = i.expenses.Create(ctx, userID, input); err != nil {
			result.Errors = append(result.Errors, RowError{Row: rowNumber, Err: err})
			continue
		}

		result.Imported++
	}

	i.logger.Info("Import finished",
		"user_id", userID,
		"imported", result.Imported,
		"categories_created", result.CategoriesCreated,
		"errors", len(result.Errors),
	)

	return result, nil
}

func mapRow(row []string, mapping FieldMapping) (expense.CreateInput, string, error) {
	if len(row) <= maxColumn(mapping) {
		return expense.CreateInput{}, "", errors.New("row has too few columns")
	}

	dateStr := strings.TrimSpace(row[mapping.DateColumn])
	date, err := parseDate(dateStr)
	if err != nil {
		return expense.CreateInput{}, "", fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	amountStr := row[mapping.AmountColumn]
	amount, err := parseAmount(amountStr)
	if err != nil {
		return expense.CreateInput{}, "", fmt.Errorf("invalid amount %q: %w", amountStr, err)
	}

	categoryName := strings.TrimSpace(row[mapping.CategoryColumn])
	if categoryName == "" {
		return expense.CreateInput{}, "", errors.New("category is required")
	}

	return expense.CreateInput{
		Amount:      amount,
		Description: row[mapping.DescriptionColumn],
		Date:        date,
	}, categoryName, nil
}

func maxColumn(m FieldMapping) int {
	return max(m.DateColumn, m.DescriptionColumn, m.AmountColumn, m.CategoryColumn)
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(defaultDateFormat, value); err == nil {
		return t, nil
	}

	for _, layout := range fallbackFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, errors.New("unable to parse date")
}

// parseAmount returns cents. Bank statements list charges as negative
// numbers, so the sign is dropped.
func parseAmount(value string) (int64, error) {
	matches := amountRe.FindStringSubmatch(strings.TrimSpace(value))
	if matches == nil {
		return 0, errors.New("amount does not match expected pattern")
	}

	units, err := strconv.ParseInt(matches[unitsIdx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount: %w", err)
	}
	if units > maxUnits {
		return 0, errors.New("amount is too large")
	}

	var cents int64
	if decimal := matches[decimalIdx]; decimal != "" {
		if len(decimal) == 1 {
			decimal += "0"
		}
		cents, err = strconv.ParseInt(decimal, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("failed to parse amount: %w", err)
		}
	}

	return units*100 + cents, nil
}
