package ledger

import (
	"fmt"
	"testing"
	"time"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// -----------------------------------------------------------------------------
// Period keys and month boundary
// -----------------------------------------------------------------------------

func TestPeriodKeys_UTC(t *testing.T) {
	// 23:30 IST on Jan 31 is 18:00 UTC the same day.
	ist := time.FixedZone("IST", 5*3600+1800)
	at := time.Date(2026, 1, 31, 23, 30, 0, 0, ist)

	if got := MonthKey(at); got != "2026-01" {
		t.Errorf("MonthKey = %q, want 2026-01", got)
	}
	if got := DayKey(at); got != "2026-01-31" {
		t.Errorf("DayKey = %q, want 2026-01-31", got)
	}
}

func TestNextMonthStart(t *testing.T) {
	tests := []struct {
		now  string
		want string
	}{
		{"2026-01-15T12:00:00Z", "2026-02-01T00:00:00Z"},
		{"2026-12-31T23:59:59Z", "2027-01-01T00:00:00Z"},
		{"2026-02-01T00:00:00Z", "2026-03-01T00:00:00Z"},
	}
	for _, tt := range tests {
		got := NextMonthStart(ts(tt.now))
		if !got.Equal(ts(tt.want)) {
			t.Errorf("NextMonthStart(%s) = %s, want %s", tt.now, got, tt.want)
		}
		if got.Location() != time.UTC {
			t.Errorf("NextMonthStart(%s) not in UTC", tt.now)
		}
	}
}

// -----------------------------------------------------------------------------
// Record
// -----------------------------------------------------------------------------

func TestRecord_FindOrAppend(t *testing.T) {
	var u Usage
	at := ts("2026-08-10T10:00:00Z")

	u = Record(u, "GET /v1/movies", at)
	u = Record(u, "GET /v1/movies", at.Add(time.Hour))
	u = Record(u, "GET /v1/news", at.Add(2*time.Hour))

	if len(u.Monthly) != 1 {
		t.Fatalf("len(Monthly) = %d, want 1 entry per period key", len(u.Monthly))
	}
	if u.Monthly[0].Period != "2026-08" || u.Monthly[0].Count != 3 {
		t.Errorf("Monthly[0] = %+v, want {2026-08 3}", u.Monthly[0])
	}
	if len(u.Daily) != 1 || u.Daily[0].Count != 3 {
		t.Errorf("Daily = %+v, want single entry with count 3", u.Daily)
	}
	if u.LifetimeHits != 3 {
		t.Errorf("LifetimeHits = %d, want 3", u.LifetimeHits)
	}
	if !u.LastUsedAt.Equal(at.Add(2 * time.Hour)) {
		t.Errorf("LastUsedAt = %s, want %s", u.LastUsedAt, at.Add(2*time.Hour))
	}
	if len(u.Endpoints) != 2 {
		t.Fatalf("len(Endpoints) = %d, want 2", len(u.Endpoints))
	}
	if u.Endpoints[0].Count != 2 || u.Endpoints[1].Count != 1 {
		t.Errorf("endpoint counts = %d, %d, want 2, 1", u.Endpoints[0].Count, u.Endpoints[1].Count)
	}
}

func TestRecord_NewPeriodAppends(t *testing.T) {
	var u Usage
	u = Record(u, "GET /v1/movies", ts("2026-08-31T23:00:00Z"))
	u = Record(u, "GET /v1/movies", ts("2026-09-01T01:00:00Z"))

	if len(u.Monthly) != 2 {
		t.Fatalf("len(Monthly) = %d, want 2", len(u.Monthly))
	}
	for _, pc := range u.Monthly {
		if pc.Count != 1 {
			t.Errorf("period %s count = %d, want 1", pc.Period, pc.Count)
		}
	}
}

func TestRecord_MonthlyWindowFIFO(t *testing.T) {
	var u Usage
	start := ts("2020-01-15T00:00:00Z")

	// 25 distinct months; the first must fall off the front.
	for i := 0; i < MonthlyWindowCap+1; i++ {
		u = Record(u, "GET /v1/news", start.AddDate(0, i, 0))
	}

	if len(u.Monthly) != MonthlyWindowCap {
		t.Fatalf("len(Monthly) = %d, want %d", len(u.Monthly), MonthlyWindowCap)
	}
	if u.Monthly[0].Period != "2020-02" {
		t.Errorf("oldest retained period = %s, want 2020-02 (2020-01 evicted)", u.Monthly[0].Period)
	}
	if u.Monthly[len(u.Monthly)-1].Period != "2022-01" {
		t.Errorf("newest period = %s, want 2022-01", u.Monthly[len(u.Monthly)-1].Period)
	}
}

func TestRecord_DailyWindowFIFO(t *testing.T) {
	var u Usage
	start := ts("2026-08-01T00:00:00Z")

	for i := 0; i < DailyWindowCap+5; i++ {
		u = Record(u, "GET /v1/news", start.AddDate(0, 0, i))
	}

	if len(u.Daily) != DailyWindowCap {
		t.Fatalf("len(Daily) = %d, want %d", len(u.Daily), DailyWindowCap)
	}
	if u.Daily[0].Period != "2026-08-06" {
		t.Errorf("oldest retained day = %s, want 2026-08-06", u.Daily[0].Period)
	}
}

func TestRecord_EndpointEvictsLowestCount(t *testing.T) {
	var u Usage
	at := ts("2026-08-10T10:00:00Z")

	// 50 endpoints, each hit twice.
	for i := 0; i < EndpointCap; i++ {
		ep := fmt.Sprintf("GET /v1/celebrities/%d", i)
		u = Record(u, ep, at)
		u = Record(u, ep, at)
	}

	// The 51st endpoint has count 1: it is the lowest and gets evicted
	// immediately even though it is the newest.
	u = Record(u, "GET /v1/outfits", at)

	if len(u.Endpoints) != EndpointCap {
		t.Fatalf("len(Endpoints) = %d, want %d", len(u.Endpoints), EndpointCap)
	}
	for _, s := range u.Endpoints {
		if s.Endpoint == "GET /v1/outfits" {
			t.Error("newly inserted lowest-count endpoint should have been evicted")
		}
		if s.Count != 2 {
			t.Errorf("endpoint %s count = %d, want 2", s.Endpoint, s.Count)
		}
	}
}

func TestRecord_EndpointEvictionKeepsHighest(t *testing.T) {
	var u Usage
	at := ts("2026-08-10T10:00:00Z")

	// One busy endpoint, then 50 singles. The busy one must survive.
	for i := 0; i < 10; i++ {
		u = Record(u, "GET /v1/movies", at)
	}
	for i := 0; i < EndpointCap; i++ {
		u = Record(u, fmt.Sprintf("GET /v1/news/%d", i), at)
	}

	if len(u.Endpoints) != EndpointCap {
		t.Fatalf("len(Endpoints) = %d, want %d", len(u.Endpoints), EndpointCap)
	}
	found := false
	for _, s := range u.Endpoints {
		if s.Endpoint == "GET /v1/movies" {
			found = true
			if s.Count != 10 {
				t.Errorf("busy endpoint count = %d, want 10", s.Count)
			}
		}
	}
	if !found {
		t.Error("highest-count endpoint was evicted")
	}
}

func TestRecord_DoesNotMutateInput(t *testing.T) {
	orig := Usage{
		Monthly:   []PeriodCount{{Period: "2026-08", Count: 5}},
		Daily:     []PeriodCount{{Period: "2026-08-10", Count: 5}},
		Endpoints: []EndpointStat{{Endpoint: "GET /v1/movies", Count: 5}},
	}

	_ = Record(orig, "GET /v1/movies", ts("2026-08-10T10:00:00Z"))

	if orig.Monthly[0].Count != 5 || orig.Daily[0].Count != 5 || orig.Endpoints[0].Count != 5 {
		t.Error("Record mutated its input")
	}
}

// -----------------------------------------------------------------------------
// Check
// -----------------------------------------------------------------------------

func TestCheck_UnderQuota(t *testing.T) {
	now := ts("2026-08-10T10:00:00Z")
	u := Usage{Monthly: []PeriodCount{{Period: "2026-08", Count: 99}}}

	res := Check(u, 100, now)
	if !res.Allowed {
		t.Error("expected call at 99/100 to be allowed")
	}
	if res.Used != 99 || res.Total != 100 {
		t.Errorf("Used/Total = %d/%d, want 99/100", res.Used, res.Total)
	}
}

func TestCheck_AtQuota(t *testing.T) {
	now := ts("2026-08-10T10:00:00Z")
	u := Usage{Monthly: []PeriodCount{{Period: "2026-08", Count: 100}}}

	res := Check(u, 100, now)
	if res.Allowed {
		t.Error("expected call at 100/100 to be rejected")
	}
	if res.Used != 100 || res.Total != 100 {
		t.Errorf("Used/Total = %d/%d, want 100/100", res.Used, res.Total)
	}
	if !res.ResetsOn.Equal(ts("2026-09-01T00:00:00Z")) {
		t.Errorf("ResetsOn = %s, want 2026-09-01T00:00:00Z", res.ResetsOn)
	}
}

func TestCheck_FreshMonthStartsAtZero(t *testing.T) {
	// Usage from last month does not count against this month.
	now := ts("2026-09-01T00:00:01Z")
	u := Usage{Monthly: []PeriodCount{{Period: "2026-08", Count: 100}}}

	res := Check(u, 100, now)
	if !res.Allowed || res.Used != 0 {
		t.Errorf("Allowed=%v Used=%d, want Allowed=true Used=0", res.Allowed, res.Used)
	}
}

// Scenario from the billing rules: freeQuota=100, usage 99 -> accepted and
// becomes 100; the following call in the same month is rejected.
func TestScenario_LastCallThenReject(t *testing.T) {
	now := ts("2026-08-20T10:00:00Z")
	u := Usage{Monthly: []PeriodCount{{Period: "2026-08", Count: 99}}}

	res := Check(u, 100, now)
	if !res.Allowed {
		t.Fatal("call at 99/100 should be accepted")
	}
	u = Record(u, "GET /v1/movies", now)
	if got := MonthUsage(u, now); got != 100 {
		t.Fatalf("usage after accept = %d, want 100", got)
	}

	res = Check(u, 100, now.Add(time.Minute))
	if res.Allowed {
		t.Error("call at 100/100 should be rejected")
	}
	if res.Used != 100 || res.Total != 100 {
		t.Errorf("Used/Total = %d/%d, want 100/100", res.Used, res.Total)
	}
}

func TestRecordAll(t *testing.T) {
	at := ts("2026-08-10T10:00:00Z")
	hits := []Hit{
		{Endpoint: "GET /v1/movies", At: at},
		{Endpoint: "GET /v1/movies", At: at.Add(time.Second)},
		{Endpoint: "GET /v1/news", At: at.Add(2 * time.Second)},
	}

	u := RecordAll(Usage{}, hits)
	if u.LifetimeHits != 3 {
		t.Errorf("LifetimeHits = %d, want 3", u.LifetimeHits)
	}
	if got := MonthUsage(u, at); got != 3 {
		t.Errorf("MonthUsage = %d, want 3", got)
	}
}
