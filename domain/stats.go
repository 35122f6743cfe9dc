package domain

import (
	"math"
	"slices"
	"sort"
)

// PathStats is the latency summary of one request path. Shares are fractions
// of the run's totals, not percentages.
type PathStats struct {
	URL        string
	Count      int
	CountShare float64
	TimeSum    float64
	TimeShare  float64
	TimeAvg    float64
	TimeMedian float64
	TimeMax    float64
	TimeMin    float64
}

// Rounded returns a copy with every float field rounded to places decimals.
func (s PathStats) Rounded(places int) PathStats {
	s.CountShare = round(s.CountShare, places)
	s.TimeSum = round(s.TimeSum, places)
	s.TimeShare = round(s.TimeShare, places)
	s.TimeAvg = round(s.TimeAvg, places)
	s.TimeMedian = round(s.TimeMedian, places)
	s.TimeMax = round(s.TimeMax, places)
	s.TimeMin = round(s.TimeMin, places)
	return s
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// Accumulator groups request times by path for a single run. It is not safe
// for concurrent use; shards parsed in parallel each get their own and are
// combined with Merge.
type Accumulator struct {
	times map[string][]float64
	order []string
}

func NewAccumulator() *Accumulator {
	return &Accumulator{times: make(map[string][]float64)}
}

func (a *Accumulator) Add(rec LogRecord) {
	a.add(rec.Request, rec.RequestTime)
}

func (a *Accumulator) add(url string, t float64) {
	if _, ok := a.times[url]; !ok {
		a.order = append(a.order, url)
	}
	a.times[url] = append(a.times[url], t)
}

// Merge appends other's raw samples. Medians and extrema are only computed
// after all shards are merged.
func (a *Accumulator) Merge(other *Accumulator) {
	for _, url := range other.order {
		for _, t := range other.times[url] {
			a.add(url, t)
		}
	}
}

// Len returns the number of records added so far.
func (a *Accumulator) Len() int {
	n := 0
	for _, ts := range a.times {
		n += len(ts)
	}
	return n
}

// Stats computes one PathStats per distinct path, in first-seen order.
// An empty accumulator yields no stats.
func (a *Accumulator) Stats() []PathStats {
	var (
		totalCount int
		totalTime  float64
	)
	for _, ts := range a.times {
		totalCount += len(ts)
		for _, t := range ts {
			totalTime += t
		}
	}
	if totalCount == 0 {
		return nil
	}

	stats := make([]PathStats, 0, len(a.order))
	for _, url := range a.order {
		ts := slices.Clone(a.times[url])
		sort.Float64s(ts)

		var sum float64
		for _, t := range ts {
			sum += t
		}

		st := PathStats{
			URL:        url,
			Count:      len(ts),
			CountShare: float64(len(ts)) / float64(totalCount),
			TimeSum:    sum,
			TimeAvg:    sum / float64(len(ts)),
			TimeMedian: medianSorted(ts),
			TimeMin:    ts[0],
			TimeMax:    ts[len(ts)-1],
		}
		// A log made only of zero request times has no time to share.
		if totalTime > 0 {
			st.TimeShare = sum / totalTime
		}
		st.TimeAvg = clamp(st.TimeAvg, st.TimeMin, st.TimeMax)
		stats = append(stats, st)
	}
	return stats
}

// Aggregate groups records by path and summarizes each group.
func Aggregate(records []LogRecord) []PathStats {
	acc := NewAccumulator()
	for _, rec := range records {
		acc.Add(rec)
	}
	return acc.Stats()
}

// Median returns the classic median of values: the middle element, or the
// mean of the two middle elements for an even count. Zero for no values.
func Median(values []float64) float64 {
	sorted := slices.Clone(values)
	sort.Float64s(sorted)
	return medianSorted(sorted)
}

func medianSorted(ts []float64) float64 {
	n := len(ts)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return ts[n/2]
	default:
		return (ts[n/2-1] + ts[n/2]) / 2
	}
}

// clamp keeps floating-point summation error from pushing the mean outside
// the observed range.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
