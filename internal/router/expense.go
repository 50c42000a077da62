package router

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/controlai/controlai/internal/apperror"
	"github.com/controlai/controlai/internal/expense"
	"github.com/controlai/controlai/internal/storage"
	"github.com/controlai/controlai/internal/util"
)

type expenseHandler struct {
	router *router
}

type expenseRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
	CategoryID  int64  `json:"category_id"`
}

type expenseResponse struct {
	ID          int64     `json:"id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	CategoryID  int64     `json:"category_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type categoryTotalResponse struct {
	CategoryID   int64  `json:"category_id"`
	CategoryName string `json:"category_name"`
	CategoryIcon string `json:"category_icon"`
	Total        int64  `json:"total"`
}

type periodResponse struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

func newExpenseResponse(e storage.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID(),
		Amount:      e.Amount(),
		Description: e.Description(),
		Date:        e.Date().UTC(),
		CategoryID:  e.CategoryID(),
		CreatedAt:   e.CreatedAt().UTC(),
		UpdatedAt:   e.UpdatedAt().UTC(),
	}
}

func (e *expenseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/expenses", e.router.authenticated(e.create))
	mux.HandleFunc("GET /api/expenses", e.router.authenticated(e.list))
	mux.HandleFunc("GET /api/expenses/balance/total", e.router.authenticated(e.total))
	mux.HandleFunc("GET /api/expenses/balance/per-categories", e.router.authenticated(e.perCategory))
	mux.HandleFunc("GET /api/expenses/history-data", e.router.authenticated(e.historyData))
	mux.HandleFunc("GET /api/expenses/history/periods", e.router.authenticated(e.periods))
	mux.HandleFunc("DELETE /api/expenses/{expenseID}", e.router.authenticated(e.delete))
}

func (e *expenseHandler) create(w http.ResponseWriter, r *http.Request, userID int64) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		e.router.writeError(w, r, err)
		return
	}

	date, err := util.ParseDate(req.Date, false)
	if err != nil {
		e.router.writeError(w, r, apperror.Invalid(err.Error()))
		return
	}

	created, err := e.router.services.Expenses.Create(r.Context(), userID, expense.CreateInput{
		Amount:      req.Amount,
		Description: req.Description,
		Date:        date,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	e.router.writeJSON(w, http.StatusCreated, newExpenseResponse(created))
}

func (e *expenseHandler) list(w http.ResponseWriter, r *http.Request, userID int64) {
	from, to, err := parseRange(r)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	expenses, err := e.router.services.Expenses.List(r.Context(), userID, from, to)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	response := make([]expenseResponse, 0, len(expenses))
	for _, ex := range expenses {
		response = append(response, newExpenseResponse(ex))
	}

	e.router.writeJSON(w, http.StatusOK, response)
}

func (e *expenseHandler) total(w http.ResponseWriter, r *http.Request, userID int64) {
	from, to, err := parseRange(r)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	total, err := e.router.services.Expenses.Total(r.Context(), userID, from, to)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	e.router.writeJSON(w, http.StatusOK, map[string]int64{"total": total})
}

func (e *expenseHandler) perCategory(w http.ResponseWriter, r *http.Request, userID int64) {
	from, to, err := parseRange(r)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	totals, err := e.router.services.Expenses.PerCategory(r.Context(), userID, from, to)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	response := make([]categoryTotalResponse, 0, len(totals))
	for _, t := range totals {
		response = append(response, categoryTotalResponse(t))
	}

	e.router.writeJSON(w, http.StatusOK, response)
}

// historyData serves the dense series of a year, or of one month when
// timeframe=month. month is 1-based (1 is January).
func (e *expenseHandler) historyData(w http.ResponseWriter, r *http.Request, userID int64) {
	query := r.URL.Query()

	year, err := strconv.Atoi(query.Get("year"))
	if err != nil {
		e.router.writeError(w, r, apperror.Invalid("year is required"))
		return
	}

	timeframe := query.Get("timeframe")

	var month int
	if timeframe == expense.TimeframeMonth {
		month, err = strconv.Atoi(query.Get("month"))
		if err != nil {
			e.router.writeError(w, r, apperror.Invalid("month is required for the month timeframe"))
			return
		}
	}

	points, err := e.router.services.Expenses.History(r.Context(), userID, year, timeframe, month)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	e.router.writeJSON(w, http.StatusOK, points)
}

func (e *expenseHandler) periods(w http.ResponseWriter, r *http.Request, userID int64) {
	periods, err := e.router.services.Expenses.Periods(r.Context(), userID)
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	response := make([]periodResponse, 0, len(periods))
	for _, p := range periods {
		response = append(response, periodResponse(p))
	}

	e.router.writeJSON(w, http.StatusOK, response)
}

func (e *expenseHandler) delete(w http.ResponseWriter, r *http.Request, userID int64) {
	id, err := pathID(r, "expenseID")
	if err != nil {
		e.router.writeError(w, r, err)
		return
	}

	if err = e.router.services.Expenses.Delete(r.Context(), userID, id); err != nil {
		e.router.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseRange reads the from and to query parameters. A date-only to covers
// the whole day.
func parseRange(r *http.Request) (time.Time, time.Time, error) {
	query := r.URL.Query()

	from, err := util.ParseDate(query.Get("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, rangeError(err)
	}

	to, err := util.ParseDate(query.Get("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, rangeError(err)
	}

	return from, to, nil
}

func rangeError(err error) error {
	if errors.Is(err, util.ErrMissingDate) {
		return apperror.Invalid("from and to dates are required")
	}
	return apperror.Invalid(err.Error())
}
