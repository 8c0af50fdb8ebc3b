package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spice-ledger/internal/common"
	"github.com/Veraticus/spice-ledger/internal/model"
)

func octoberSummary() *model.MonthlySummary {
	summary := model.NewMonthlySummary(2024, 10)
	summary.Add(model.TransactionTypeIncome, "Salary", 5000)
	summary.Add(model.TransactionTypeIncome, "Streams", 5000)
	summary.Add(model.TransactionTypeExpense, "Music", 150)
	summary.Add(model.TransactionTypeExpense, "Transport", 30)
	return summary
}

func octoberTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: 4, Date: "2024-10-03", Category: "Transport", Description: "Promo", Amount: 30, Type: model.TransactionTypeExpense},
		{ID: 3, Date: "2024-10-02", Category: "Music", Description: "Music Video", Amount: 150, Type: model.TransactionTypeExpense},
		{ID: 2, Date: "2024-10-01", Category: "Streams", Description: "Distrokid", Amount: 5000, Type: model.TransactionTypeIncome},
		{ID: 1, Date: "2024-10-01", Category: "Salary", Description: "Monthly salary", Amount: 5000, Type: model.TransactionTypeIncome},
	}
}

func TestBuildMonthlyReport(t *testing.T) {
	report := BuildMonthlyReport(octoberSummary(), octoberTransactions())

	assert.Equal(t, "2024-10", report.Title)
	assert.True(t, report.TotalIncome.Equal(decimal.NewFromInt(10000)))
	assert.True(t, report.TotalExpenses.Equal(decimal.NewFromInt(180)))
	assert.True(t, report.NetSavings.Equal(decimal.NewFromInt(9820)))

	// Equal amounts fall back to name order.
	require.Len(t, report.Income, 2)
	assert.Equal(t, "Salary", report.Income[0].Category)
	assert.Equal(t, "Streams", report.Income[1].Category)

	require.Len(t, report.Expenses, 2)
	assert.Equal(t, "Music", report.Expenses[0].Category)
	assert.Equal(t, "Transport", report.Expenses[1].Category)

	require.Len(t, report.Transactions, 4)
	assert.Equal(t, "Promo", report.Transactions[0].Description)
	assert.Equal(t, "expense", report.Transactions[0].Type)
}

func TestBuildMonthlyReport_DecimalTotals(t *testing.T) {
	summary := model.NewMonthlySummary(2024, 3)
	for _, amount := range []float64{0.1, 0.2, 0.3} {
		summary.Add(model.TransactionTypeExpense, "Cat"+decimal.NewFromFloat(amount).String(), amount)
	}

	report := BuildMonthlyReport(summary, nil)
	assert.Equal(t, "0.6", report.TotalExpenses.String())
	assert.Equal(t, "-0.6", report.NetSavings.String())
	assert.Empty(t, report.Transactions)
}

func TestMonthlyReport_Values(t *testing.T) {
	generated := time.Date(2024, 11, 1, 9, 30, 0, 0, time.UTC)
	values := BuildMonthlyReport(octoberSummary(), octoberTransactions()).Values(generated)

	assert.Equal(t, []any{"Ledger Report", "2024-10", "Generated Nov 1, 2024 09:30"}, values[0])
	assert.Equal(t, []any{"Total Income", 10000.0}, values[3])
	assert.Equal(t, []any{"Total Expenses", 180.0}, values[4])
	assert.Equal(t, []any{"Net Savings", 9820.0}, values[5])

	detailsStart := -1
	for i, row := range values {
		if len(row) > 0 && row[0] == "Transaction Details" {
			detailsStart = i
			break
		}
	}
	require.NotEqual(t, -1, detailsStart, "should have transaction details")

	assert.Equal(t, []any{"Date", "Category", "Amount", "Type", "Description"}, values[detailsStart+1])
	assert.Equal(t, []any{"2024-10-03", "Transport", 30.0, "expense", "Promo"}, values[detailsStart+2])
	assert.Len(t, values, detailsStart+2+4)
}

// fakeSheetsAPI serves just enough of the Sheets v4 REST surface for the writer.
type fakeSheetsAPI struct {
	sheets      []string
	updates     map[string][][]any
	clears      []string
	addedSheets []string
	formatCalls int
	getCalls    int
	failGets    int
	failStatus  int
	mu          sync.Mutex
}

func newFakeSheetsAPI(existing ...string) *fakeSheetsAPI {
	return &fakeSheetsAPI{sheets: existing, updates: make(map[string][][]any)}
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		f.getCalls++
		if f.failGets > 0 {
			f.failGets--
			w.WriteHeader(f.failStatus)
			_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":"unavailable"}}`, f.failStatus)
			return
		}
		resp := sheets.Spreadsheet{SpreadsheetId: "sheet-123"}
		for i, title := range f.sheets {
			resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{SheetId: int64(i), Title: title}})
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":batchUpdate"):
		var req sheets.BatchUpdateSpreadsheetRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		resp := sheets.BatchUpdateSpreadsheetResponse{SpreadsheetId: "sheet-123"}
		if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
			title := req.Requests[0].AddSheet.Properties.Title
			f.sheets = append(f.sheets, title)
			f.addedSheets = append(f.addedSheets, title)
			resp.Replies = []*sheets.Response{{AddSheet: &sheets.AddSheetResponse{
				Properties: &sheets.SheetProperties{SheetId: 42, Title: title},
			}}}
		} else {
			f.formatCalls++
		}
		_ = json.NewEncoder(w).Encode(resp)

	case r.Method == http.MethodPost && strings.HasSuffix(path, ":clear"):
		f.clears = append(f.clears, strings.TrimSuffix(path[strings.Index(path, "/values/")+len("/values/"):], ":clear"))
		_, _ = w.Write([]byte(`{}`))

	case r.Method == http.MethodPut && strings.Contains(path, "/values/"):
		var vr sheets.ValueRange
		_ = json.NewDecoder(r.Body).Decode(&vr)
		f.updates[path[strings.Index(path, "/values/")+len("/values/"):]] = vr.Values
		_, _ = w.Write([]byte(`{}`))

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newTestWriter(t *testing.T, api *fakeSheetsAPI, config Config) *Writer {
	t.Helper()
	server := httptest.NewServer(api)
	t.Cleanup(server.Close)

	srv, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(server.Client()),
		option.WithEndpoint(server.URL+"/"))
	require.NoError(t, err)

	writer := NewWriterWithService(config, srv, nil)
	writer.now = func() time.Time { return time.Date(2024, 11, 1, 9, 30, 0, 0, time.UTC) }
	return writer
}

func testConfig() Config {
	config := DefaultConfig()
	config.SpreadsheetID = "sheet-123"
	config.ServiceAccountPath = "/unused.json"
	config.RetryDelay = time.Millisecond
	return config
}

func TestWriter_WriteMonthlyReport(t *testing.T) {
	ctx := context.Background()

	t.Run("adds the month tab and writes rows", func(t *testing.T) {
		api := newFakeSheetsAPI("Sheet1")
		writer := newTestWriter(t, api, testConfig())

		require.NoError(t, writer.WriteMonthlyReport(ctx, octoberSummary(), octoberTransactions()))

		assert.Equal(t, []string{"2024-10"}, api.addedSheets)
		assert.Equal(t, []string{"'2024-10'!A:Z"}, api.clears)
		require.Contains(t, api.updates, "'2024-10'!A1")
		rows := api.updates["'2024-10'!A1"]
		assert.Equal(t, "Ledger Report", rows[0][0])
		assert.Equal(t, 1, api.formatCalls)
	})

	t.Run("reuses an existing tab", func(t *testing.T) {
		api := newFakeSheetsAPI("Sheet1", "2024-10")
		writer := newTestWriter(t, api, testConfig())

		require.NoError(t, writer.WriteMonthlyReport(ctx, octoberSummary(), octoberTransactions()))
		assert.Empty(t, api.addedSheets)
	})

	t.Run("writes in batches", func(t *testing.T) {
		api := newFakeSheetsAPI("2024-10")
		config := testConfig()
		config.BatchSize = 10
		config.EnableFormatting = false
		writer := newTestWriter(t, api, config)

		require.NoError(t, writer.WriteMonthlyReport(ctx, octoberSummary(), octoberTransactions()))
		assert.Contains(t, api.updates, "'2024-10'!A1")
		assert.Contains(t, api.updates, "'2024-10'!A11")
		assert.Zero(t, api.formatCalls)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		api := newFakeSheetsAPI("2024-10")
		api.failGets = 1
		api.failStatus = http.StatusServiceUnavailable
		writer := newTestWriter(t, api, testConfig())

		require.NoError(t, writer.WriteMonthlyReport(ctx, octoberSummary(), nil))
		assert.Equal(t, 2, api.getCalls)
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		api := newFakeSheetsAPI("2024-10")
		api.failGets = 5
		api.failStatus = http.StatusForbidden
		writer := newTestWriter(t, api, testConfig())

		err := writer.WriteMonthlyReport(ctx, octoberSummary(), nil)
		require.Error(t, err)
		assert.Equal(t, 1, api.getCalls)
	})

	t.Run("requires a summary", func(t *testing.T) {
		writer := newTestWriter(t, newFakeSheetsAPI(), testConfig())
		assert.Error(t, writer.WriteMonthlyReport(ctx, nil, nil))
	})
}

func TestClassifyAPIError(t *testing.T) {
	assert.NoError(t, classifyAPIError(nil))

	rateLimited := classifyAPIError(&googleapi.Error{Code: http.StatusTooManyRequests})
	assert.ErrorIs(t, rateLimited, common.ErrRateLimit)

	var retryable *common.RetryableError
	forbidden := classifyAPIError(&googleapi.Error{Code: http.StatusForbidden})
	require.ErrorAs(t, forbidden, &retryable)
	assert.False(t, retryable.Retryable)

	serverErr := &googleapi.Error{Code: http.StatusInternalServerError}
	assert.Equal(t, serverErr, classifyAPIError(serverErr))
}

func TestNewWriter_InvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{}, nil)
	assert.ErrorContains(t, err, "invalid config")
}
