package importer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/controlai/controlai/internal/category"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/testutil"
)

const statement = `Date,Description,Amount,Category
15/01/2024,Supermarket,-42.50,Food
16/01/2024,Bus ticket,-2.5,Transport
2024-01-20,Dinner,30,food
not-a-date,Broken,-1.00,Food
21/01/2024,Nothing,abc,Food
22/01/2024,No category,-3.00,
`

func setupImporter(t *testing.T) (*Importer, *expense.Service, *category.Service, int64) {
	t.Helper()

	log := testutil.TestLogger(t)
	s, user := testutil.SetupTestStorage(t, log)

	expenses := expense.NewService(s, nil, log)
	categories := category.NewService(s, log)

	return New(expenses, categories, log), expenses, categories, user.ID()
}

func TestImport(t *testing.T) {
	imp, expenses, categories, userID := setupImporter(t)
	ctx := context.Background()

	food, err := categories.Create(ctx, userID, "Food", "🍕")
	require.NoError(t, err)

	data, err := ParseFile("statement.csv", strings.NewReader(statement))
	require.NoError(t, err)

	mapping, err := DefaultMapping(data)
	require.NoError(t, err)

	result, err := imp.Import(ctx, userID, data, mapping)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Imported)
	assert.Equal(t, 1, result.CategoriesCreated)
	require.Len(t, result.Errors, 3)
	assert.Equal(t, 4, result.Errors[0].Row)
	assert.Equal(t, 5, result.Errors[1].Row)
	assert.Equal(t, 6, result.Errors[2].Row)

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 31, 23, 59, 59, 0, time.UTC)

	total, err := expenses.Total(ctx, userID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(4250+250+3000), total)

	perCategory, err := expenses.PerCategory(ctx, userID, from, to)
	require.NoError(t, err)
	require.Len(t, perCategory, 2)
	assert.Equal(t, food.ID(), perCategory[0].CategoryID)
	assert.Equal(t, int64(7250), perCategory[0].Total)

	list, err := categories.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Transport", list[1].Name())
	assert.Equal(t, DefaultIcon, list[1].Icon())
}

func TestImportInvalidMapping(t *testing.T) {
	imp, _, _, userID := setupImporter(t)

	data := &ParsedData{Headers: []string{"a", "b"}, Rows: [][]string{{"1", "2"}}}

	_, err := imp.Import(context.Background(), userID, data, FieldMapping{AmountColumn: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount column index")
}

func TestDefaultMappingMissingColumn(t *testing.T) {
	data := &ParsedData{Headers: []string{"date", "description", "amount"}}

	_, err := DefaultMapping(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "category")
}

func TestParseFileJSON(t *testing.T) {
	input := `[
		{"date": "2024-02-01", "description": "Coffee", "amount": "-3.20", "category": "Food"},
		{"date": "2024-02-02", "description": "Train", "amount": 12, "category": "Transport"}
	]`

	data, err := ParseFile("statement.json", strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"amount", "category", "date", "description"}, data.Headers)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "12", data.Rows[1][0])

	mapping, err := DefaultMapping(data)
	require.NoError(t, err)
	assert.Equal(t, FieldMapping{DateColumn: 2, DescriptionColumn: 3, AmountColumn: 0, CategoryColumn: 1}, mapping)
}

func TestParseFileErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		input    string
		wantErr  string
	}{
		{"unsupported", "statement.xls", "", "unsupported file format"},
		{"empty csv", "statement.csv", "", "CSV file is empty"},
		{"header only", "statement.csv", "date,amount\n", "no data rows"},
		{"empty json", "statement.json", "[]", "no records"},
		{"bad json", "statement.json", "{", "error parsing JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(tt.filename, strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"-42.50", 4250, false},
		{"2.5", 250, false},
		{"30", 3000, false},
		{"+7,05", 705, false},
		{" 1.99 ", 199, false},
		{"92233720368547757.99", 9223372036854775799, false},
		{"-92233720368547758", 0, true},
		{"99999999999999999999", 0, true},
		{"1.999", 0, true},
		{"abc", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, input := range []string{"15/01/2024", "2024-01-15", "2024-01-15T00:00:00Z", "2024-01-15 00:00:00"} {
		got, err := parseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), got, input)
	}

	_, err := parseDate("January 15")
	assert.Error(t, err)
}
