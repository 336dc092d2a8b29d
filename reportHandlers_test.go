package main

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func queryContext(t *testing.T, rawQuery string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/reports/daily-sales?"+rawQuery, nil)
	return c, w
}

func TestDateRangeQuery(t *testing.T) {
	c, _ := queryContext(t, "from_date=2026-08-01&to_date=2026-08-15")
	from, to, err := dateRangeQuery(c)
	if err != nil {
		t.Fatalf("dateRangeQuery() error = %v", err)
	}
	wantFrom := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	if from == nil || !from.Equal(wantFrom) {
		t.Errorf("from = %v, want %v", from, wantFrom)
	}
	// to_date is inclusive through the end of the day
	wantTo := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	if to == nil || !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
}

func TestDateRangeQuery_Omitted(t *testing.T) {
	c, _ := queryContext(t, "")
	from, to, err := dateRangeQuery(c)
	if err != nil {
		t.Fatalf("dateRangeQuery() error = %v", err)
	}
	if from != nil || to != nil {
		t.Errorf("expected nil range, got from=%v to=%v", from, to)
	}
}

func TestDateRangeQuery_Invalid(t *testing.T) {
	c, _ := queryContext(t, "from_date=01-08-2026")
	if _, _, err := dateRangeQuery(c); err == nil {
		t.Error("expected parse error for non ISO date")
	}
}

func TestReportRange_ExplicitDates(t *testing.T) {
	c, _ := queryContext(t, "from_date=2026-08-01&to_date=2026-08-15")
	from, to, ok := reportRange(c)
	if !ok {
		t.Fatal("reportRange() ok = false")
	}
	if !from.Equal(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	wantTo := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	if !to.Equal(wantTo) {
		t.Errorf("to = %v, want %v", to, wantTo)
	}
}

func TestReportRange_DefaultsToLast30Days(t *testing.T) {
	c, _ := queryContext(t, "")
	from, to, ok := reportRange(c)
	if !ok {
		t.Fatal("reportRange() ok = false")
	}
	if got := to.Sub(from); got != 30*24*time.Hour {
		t.Errorf("default window = %v, want %v", got, 30*24*time.Hour)
	}
}

func TestReportRange_InvalidDateRejected(t *testing.T) {
	c, w := queryContext(t, "to_date=15/08/2026")
	if _, _, ok := reportRange(c); ok {
		t.Fatal("reportRange() ok = true for malformed to_date")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
