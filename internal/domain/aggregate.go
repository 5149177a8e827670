package domain

import "sort"

// Counters are the three casualty totals shown in the animated counter strip.
type Counters struct {
	HumanFatalities  int64 `json:"human_fatalities"`
	HumanInjuries    int64 `json:"human_injuries"`
	AnimalFatalities int64 `json:"animal_fatalities"`
}

// BuildCounters sums the casualty fields over v. An empty view yields 0/0/0.
func BuildCounters(v *FilteredView) Counters {
	var c Counters
	if v == nil {
		return c
	}
	for i := range v.Records {
		c.HumanFatalities += v.Records[i].HumanFatality
		c.HumanInjuries += v.Records[i].HumanInjured
		c.AnimalFatalities += v.Records[i].AnimalFatality
	}
	return c
}

// YearCount is the number of events recorded in one year.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// BuildTimeSeries counts records per Year, ascending by year. Years with no
// events are omitted.
func BuildTimeSeries(v *FilteredView) []YearCount {
	out := make([]YearCount, 0)
	if v.Empty() {
		return out
	}
	counts := make(map[int]int)
	for i := range v.Records {
		counts[v.Records[i].Year]++
	}
	for year, n := range counts {
		out = append(out, YearCount{Year: year, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// CauseCount is the frequency of one MainCause value.
type CauseCount struct {
	Cause string `json:"cause"`
	Count int    `json:"count"`
}

// BuildCauseDistribution counts records per MainCause, descending by count.
// Ties keep first-seen order.
func BuildCauseDistribution(v *FilteredView) []CauseCount {
	out := make([]CauseCount, 0)
	if v.Empty() {
		return out
	}
	pos := make(map[string]int)
	for i := range v.Records {
		cause := v.Records[i].MainCause
		if j, ok := pos[cause]; ok {
			out[j].Count++
			continue
		}
		pos[cause] = len(out)
		out = append(out, CauseCount{Cause: cause, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Point is one scatter plot sample.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BuildDurationInjuredScatter pairs Duration with HumanInjured for every
// record that has a duration.
func BuildDurationInjuredScatter(v *FilteredView) []Point {
	out := make([]Point, 0, v.Len())
	if v == nil {
		return out
	}
	for i := range v.Records {
		r := &v.Records[i]
		if !r.HasDuration() {
			continue
		}
		out = append(out, Point{X: r.Duration, Y: float64(r.HumanInjured)})
	}
	return out
}
