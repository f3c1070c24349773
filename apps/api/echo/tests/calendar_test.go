package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/vidyalaya/apps/api/echo"
)

func Test_calendarApi(t *testing.T) {
	app := setup(t)

	// same calendar day in UTC and Kathmandu
	NowFunc = func() time.Time { return time.Date(2024, 4, 15, 6, 0, 0, 0, time.UTC) }
	defer func() { NowFunc = time.Now }()

	tests := []httpTest{
		{
			name: "normalize", path: "/v1/calendar/normalize?date=2081/1/3", wantCode: http.StatusOK,
			wantData: marshallObj(t, map[string]string{"date": "2081-01-03"}),
		},
		{
			name: "normalize: mixed separators", path: "/v1/calendar/normalize?date=2081-1/3",
			wantCode: http.StatusBadRequest,
		},
		{
			name: "normalize: missing date", path: "/v1/calendar/normalize", wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"date": "this field is required"}),
		},
		{
			name: "ad to bs", path: "/v1/calendar/ad-to-bs?date=2024-04-15", wantCode: http.StatusOK,
			wantData: marshallObj(t, ConversionResponse{AD: "2024-04-15", BS: "2081-01-03", BSFormatted: "3 Baisakh 2081"}),
		},
		{name: "ad to bs: malformed", path: "/v1/calendar/ad-to-bs?date=15-04-2024", wantCode: http.StatusBadRequest},
		{name: "ad to bs: impossible day", path: "/v1/calendar/ad-to-bs?date=2023-02-29", wantCode: http.StatusBadRequest},
		{name: "ad to bs: out of range", path: "/v1/calendar/ad-to-bs?date=1900-01-01", wantCode: http.StatusUnprocessableEntity},
		{
			name: "bs to ad", path: "/v1/calendar/bs-to-ad?date=2081-03-32", wantCode: http.StatusOK,
			wantData: marshallObj(t, ConversionResponse{AD: "2024-07-15", BS: "2081-03-32", BSFormatted: "32 Asar 2081"}),
		},
		{name: "bs to ad: day overflow", path: "/v1/calendar/bs-to-ad?date=2081-01-32", wantCode: http.StatusUnprocessableEntity},
		{name: "bs to ad: out of table", path: "/v1/calendar/bs-to-ad?date=2100-01-01", wantCode: http.StatusUnprocessableEntity},
		{
			name: "range", path: "/v1/calendar/range?start=2024-02-28&end=2024-03-01", wantCode: http.StatusOK,
			wantData: marshallObj(t, RangeResponse{
				Start: "2024-02-28",
				End:   "2024-03-01",
				Days:  3,
				Dates: []string{"2024-02-28", "2024-02-29", "2024-03-01"},
			}),
		},
		{name: "range: reversed", path: "/v1/calendar/range?start=2024-03-01&end=2024-02-28", wantCode: http.StatusUnprocessableEntity},
		{name: "range: too long", path: "/v1/calendar/range?start=1990-01-01&end=2024-01-01", wantCode: http.StatusBadRequest},
		{
			name: "month", path: "/v1/calendar/months/12", wantCode: http.StatusOK,
			wantData: marshallObj(t, MonthResponse{Month: 12, Name: "Chaitra"}),
		},
		{
			name: "month: unknown", path: "/v1/calendar/months/13", wantCode: http.StatusOK,
			wantData: marshallObj(t, MonthResponse{Month: 13, Name: "Unknown"}),
		},
		{name: "month: not a number", path: "/v1/calendar/months/lol", wantCode: http.StatusBadRequest},
	}
	runHTTPTests(t, app, tests)

	t.Run("today", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/calendar/today")
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got TodayResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, "2024-04-15", got.Today)
		assert.Equal(t, "2024-04-16", got.Tomorrow)
		assert.Equal(t, "2081-01-03", got.TodayBS)
	})
}
