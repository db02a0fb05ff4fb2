package traces

import (
	"sort"
	"time"

	"github.com/katalvlaran/golondrina/dataset"
	"github.com/katalvlaran/golondrina/table"
)

// ComputeTraceStats summarizes a trace dataset read-only: point and user
// counts, the covered time span, points-per-user quantiles and, when
// timestamps parse, per-user sampling interval quantiles in seconds.
func ComputeTraceStats(ds *dataset.TraceDataset) (map[string]any, error) {
	if ds == nil {
		return nil, ErrNilDataset
	}
	tbl, sch := ds.Data, ds.Schema
	if tbl == nil {
		return nil, ErrNilTable
	}

	stats := map[string]any{
		"n_points": tbl.NumRows(),
		"crs":      sch.EffectiveCRS(),
	}

	users, errUsers := tbl.Column(sch.UserIDField)
	times, errTimes := tbl.Column(sch.TimeField)

	perUser := make(map[string][]int64)
	var minT, maxT time.Time
	if errTimes == nil {
		for i := range times {
			t, ok := table.AsTime(times[i])
			if !ok {
				continue
			}
			if minT.IsZero() || t.Before(minT) {
				minT = t
			}
			if maxT.IsZero() || t.After(maxT) {
				maxT = t
			}
			if errUsers == nil && !table.IsNull(users[i]) {
				key := table.KeyString(users[i])
				perUser[key] = append(perUser[key], t.Unix())
			}
		}
	}
	if !minT.IsZero() {
		stats["time_min"] = minT.UTC().Format(time.RFC3339)
		stats["time_max"] = maxT.UTC().Format(time.RFC3339)
		stats["time_span_s"] = maxT.Unix() - minT.Unix()
	}

	if errUsers == nil {
		stats["n_users"] = countUsers(users, true)
	}
	if len(perUser) > 0 {
		counts := make([]float64, 0, len(perUser))
		var intervals []float64
		for _, ts := range perUser {
			counts = append(counts, float64(len(ts)))
			sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
			for i := 1; i < len(ts); i++ {
				intervals = append(intervals, float64(ts[i]-ts[i-1]))
			}
		}
		stats["points_per_user"] = quantileSummary(counts)
		if len(intervals) > 0 {
			stats["sampling_interval_s"] = quantileSummary(intervals)
		}
	}

	return stats, nil
}

// quantileSummary renders min/median/p90/max of vs.
func quantileSummary(vs []float64) map[string]any {
	sorted := append([]float64(nil), vs...)
	sort.Float64s(sorted)

	return map[string]any{
		"min":    sorted[0],
		"median": quantile(sorted, 0.5),
		"p90":    quantile(sorted, 0.9),
		"max":    sorted[len(sorted)-1],
	}
}

// quantile reads q from an ascending slice by nearest-rank.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(q * float64(len(sorted)-1))

	return sorted[idx]
}
