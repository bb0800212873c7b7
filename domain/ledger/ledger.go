// Package ledger maintains the bounded rolling usage counters attached
// to an API key record. All functions are pure - no side effects.
//
// The three windows use different eviction policies on purpose: the
// monthly and daily windows evict the oldest entry (FIFO), while the
// endpoint set evicts the lowest-count entry. The asymmetry is
// observable behavior carried over from the platform's billing rules,
// not an accident.
package ledger

import (
	"sort"
	"time"
)

// Retention caps for the rolling windows.
const (
	MonthlyWindowCap = 24
	DailyWindowCap   = 30
	EndpointCap      = 50
)

// PeriodCount is one counter within a rolling time window.
type PeriodCount struct {
	Period string `json:"period"` // "2006-01" or "2006-01-02"
	Count  int64  `json:"count"`
}

// EndpointStat is one per-endpoint counter.
type EndpointStat struct {
	Endpoint  string    `json:"endpoint"` // "GET /v1/celebrities"
	Count     int64     `json:"count"`
	LastHitAt time.Time `json:"lastHitAt"`
}

// Usage holds all rolling counters for one key (value type).
type Usage struct {
	LifetimeHits int64          `json:"lifetimeHits"`
	Monthly      []PeriodCount  `json:"monthly"`
	Daily        []PeriodCount  `json:"daily"`
	Endpoints    []EndpointStat `json:"endpoints"`
	LastUsedAt   time.Time      `json:"lastUsedAt"`
}

// Hit is one accepted call to be recorded.
type Hit struct {
	Endpoint string
	At       time.Time
}

// MonthKey returns the monthly window key for t (UTC).
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// DayKey returns the daily window key for t (UTC).
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// NextMonthStart returns the first instant of the month after t, UTC.
// This is the moment monthly quota resets.
func NextMonthStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
}

// MonthUsage returns the recorded usage for the month containing t.
func MonthUsage(u Usage, t time.Time) int64 {
	k := MonthKey(t)
	for _, pc := range u.Monthly {
		if pc.Period == k {
			return pc.Count
		}
	}
	return 0
}

// CheckResult is the outcome of a quota check (value type).
type CheckResult struct {
	Allowed  bool
	Used     int64
	Total    int64
	ResetsOn time.Time
}

// Check decides whether one more call fits under the monthly quota.
// The check runs BEFORE recording: a call that would exceed the quota
// is rejected and never counted.
func Check(u Usage, totalQuota int64, now time.Time) CheckResult {
	used := MonthUsage(u, now)
	return CheckResult{
		Allowed:  used < totalQuota,
		Used:     used,
		Total:    totalQuota,
		ResetsOn: NextMonthStart(now),
	}
}

// Record returns a copy of u with one accepted call applied:
// monthly and daily find-or-append (capped, oldest evicted first),
// lifetime counter and last-used timestamp, and the endpoint set
// (capped, lowest count evicted - possibly the entry just inserted).
func Record(u Usage, endpoint string, at time.Time) Usage {
	u.Monthly = bump(u.Monthly, MonthKey(at), MonthlyWindowCap)
	u.Daily = bump(u.Daily, DayKey(at), DailyWindowCap)
	u.LifetimeHits++
	u.LastUsedAt = at.UTC()
	u.Endpoints = bumpEndpoint(u.Endpoints, endpoint, at.UTC())
	return u
}

// RecordAll applies a batch of hits in order.
func RecordAll(u Usage, hits []Hit) Usage {
	for _, h := range hits {
		u = Record(u, h.Endpoint, h.At)
	}
	return u
}

// bump increments the entry for period, appending it if absent and
// evicting from the front when the window exceeds cap.
func bump(window []PeriodCount, period string, limit int) []PeriodCount {
	out := make([]PeriodCount, len(window))
	copy(out, window)

	for i := range out {
		if out[i].Period == period {
			out[i].Count++
			return out
		}
	}

	out = append(out, PeriodCount{Period: period, Count: 1})
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// bumpEndpoint increments the stat for endpoint, appending if absent.
// Over EndpointCap the set is sorted by count descending and truncated,
// so the least-used endpoints are evicted rather than the oldest.
func bumpEndpoint(stats []EndpointStat, endpoint string, at time.Time) []EndpointStat {
	out := make([]EndpointStat, len(stats))
	copy(out, stats)

	for i := range out {
		if out[i].Endpoint == endpoint {
			out[i].Count++
			out[i].LastHitAt = at
			return out
		}
	}

	out = append(out, EndpointStat{Endpoint: endpoint, Count: 1, LastHitAt: at})
	if len(out) > EndpointCap {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
		out = out[:EndpointCap]
	}
	return out
}
