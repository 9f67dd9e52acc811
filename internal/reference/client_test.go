package reference

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smokyabdulrahman/salat/internal/prayer"
)

// sampleResponse returns a valid Al Adhan API response for testing.
func sampleResponse() Response {
	return Response{
		Code:   200,
		Status: "OK",
		Data: Data{
			Timings: Timings{
				Fajr:      "04:11",
				Sunrise:   "05:39",
				Dhuhr:     "12:22",
				Asr:       "15:40",
				Sunset:    "19:05",
				Maghrib:   "19:05",
				Isha:      "20:35 (+03)",
				Midnight:  "23:38",
				Lastthird: "01:08",
			},
			Date: DateInfo{
				Readable: "15 Jun 2024",
				Hijri: HijriDate{
					Day:   "09",
					Month: HijriMonth{Number: 12, En: "Dhū al-Ḥijjah"},
					Year:  "1445",
				},
			},
			Meta: Meta{
				Latitude:  21.4225,
				Longitude: 39.8262,
				Timezone:  "Asia/Riyadh",
				Method:    MethodInfo{ID: 3, Name: "Muslim World League"},
				School:    "STANDARD",
			},
		},
	}
}

var (
	mecca     = prayer.Coordinate{Latitude: 21.4225, Longitude: 39.8262}
	meccaDate = prayer.CalendarDate{Year: 2024, Month: 6, Day: 15}
)

func mwl(t *testing.T) prayer.Params {
	t.Helper()
	p, err := prayer.LookupMethod(prayer.MuslimWorldLeague)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewClient(t *testing.T) {
	c := NewClient()
	if c == nil {
		t.Fatal("NewClient returned nil")
	}
	if c.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL, defaultBaseURL)
	}
}

func TestMethodID_AllRegistered(t *testing.T) {
	for _, id := range prayer.MethodIDs() {
		if _, ok := MethodID(id); !ok {
			t.Errorf("no Al Adhan number for method %q", id)
		}
	}
	if _, ok := MethodID("custom"); ok {
		t.Error("custom parameters should not map to a fixed method")
	}
}

// ---------------------------------------------------------------------------
// Query
// ---------------------------------------------------------------------------

func TestRequest_Query(t *testing.T) {
	q := Request{
		Date:       meccaDate,
		Coordinate: mecca,
		Params:     mwl(t).WithMadhab(prayer.Hanafi).WithHighLatitudeRule(prayer.SeventhOfTheNight),
		Timezone:   "Asia/Riyadh",
	}.Query()

	want := map[string]string{
		"latitude":                 "21.422500",
		"longitude":                "39.826200",
		"method":                   "3",
		"school":                   "1",
		"midnightMode":             "1",
		"latitudeAdjustmentMethod": "2",
		"timezonestring":           "Asia/Riyadh",
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if q.Has("methodSettings") {
		t.Error("registered methods should not send methodSettings")
	}
}

func TestRequest_QueryCustomMethod(t *testing.T) {
	tests := []struct {
		name   string
		params prayer.Params
		want   string
	}{
		{"angles", prayer.NewParams(16, 14), "16,null,14"},
		{"interval", prayer.NewParams(18.5, 0).WithIshaInterval(90), "18.5,null,90 min"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := Request{Date: meccaDate, Coordinate: mecca, Params: tt.params}.Query()
			if q.Get("method") != "99" {
				t.Errorf("method = %q, want 99", q.Get("method"))
			}
			if got := q.Get("methodSettings"); got != tt.want {
				t.Errorf("methodSettings = %q, want %q", got, tt.want)
			}
			if q.Has("latitudeAdjustmentMethod") || q.Has("timezonestring") {
				t.Errorf("unexpected optional params: %v", q)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// FetchTimings
// ---------------------------------------------------------------------------

func TestFetchTimings_Success(t *testing.T) {
	resp := sampleResponse()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify the request path contains /timings/ and date format DD-MM-YYYY.
		if !strings.HasSuffix(r.URL.Path, "/timings/15-06-2024") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("method") != "3" {
			t.Errorf("method = %q, want 3", r.URL.Query().Get("method"))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	got, err := c.FetchTimings(context.Background(), Request{Date: meccaDate, Coordinate: mecca, Params: mwl(t)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Timings.Fajr != "04:11" {
		t.Errorf("Fajr = %q, want %q", got.Data.Timings.Fajr, "04:11")
	}
	if got.Data.Meta.Timezone != "Asia/Riyadh" {
		t.Errorf("Timezone = %q, want %q", got.Data.Meta.Timezone, "Asia/Riyadh")
	}
}

func TestFetchTimings_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	_, err := c.FetchTimings(context.Background(), Request{Date: meccaDate, Coordinate: mecca, Params: mwl(t)})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error should include status and body, got: %v", err)
	}
}

func TestFetchTimings_APIErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{Code: 400, Status: "Bad Request"})
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	_, err := c.FetchTimings(context.Background(), Request{Date: meccaDate, Coordinate: mecca, Params: mwl(t)})
	if err == nil || !strings.Contains(err.Error(), "code=400") {
		t.Errorf("expected API error code, got %v", err)
	}
}

func TestFetchTimings_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{"))
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	if _, err := c.FetchTimings(context.Background(), Request{Date: meccaDate, Coordinate: mecca, Params: mwl(t)}); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}

func TestFetchTimings_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sampleResponse())
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.FetchTimings(ctx, Request{Date: meccaDate, Coordinate: mecca, Params: mwl(t)}); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestHijriDate_Format(t *testing.T) {
	h := sampleResponse().Data.Date.Hijri
	if got := h.Format(); got != "09 Dhū al-Ḥijjah 1445 AH" {
		t.Errorf("Format() = %q", got)
	}
	if got := (HijriDate{}).Format(); got != "" {
		t.Errorf("empty Format() = %q, want empty", got)
	}
}
