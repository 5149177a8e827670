package domain

// BoxStats summarizes one numeric series for a box-and-whisker plot.
// Whiskers reach the most extreme values within 1.5 IQR of the box.
type BoxStats struct {
	Field       string    `json:"field"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	WhiskerLow  float64   `json:"whisker_low"`
	WhiskerHigh float64   `json:"whisker_high"`
	Outliers    []float64 `json:"outliers"`
	N           int       `json:"n"`
}

// BoxPlot is the casualty distribution block.
type BoxPlot struct {
	Series []BoxStats `json:"series"`
}

// BuildCasualtyBoxPlot computes box statistics for Human fatality, Human
// injured and Animal Fatality, in that order. An empty view has no series.
func BuildCasualtyBoxPlot(v *FilteredView) BoxPlot {
	bp := BoxPlot{Series: make([]BoxStats, 0, 3)}
	if v.Empty() {
		return bp
	}
	fatal := make([]float64, v.Len())
	injured := make([]float64, v.Len())
	animal := make([]float64, v.Len())
	for i := range v.Records {
		fatal[i] = float64(v.Records[i].HumanFatality)
		injured[i] = float64(v.Records[i].HumanInjured)
		animal[i] = float64(v.Records[i].AnimalFatality)
	}
	bp.Series = append(bp.Series,
		boxStats(ColHumanFatality, fatal),
		boxStats(ColHumanInjured, injured),
		boxStats(ColAnimalFatality, animal),
	)
	return bp
}

func boxStats(field string, values []float64) BoxStats {
	s := sortedCopy(values)
	bs := BoxStats{
		Field:    field,
		N:        len(s),
		Min:      s[0],
		Max:      s[len(s)-1],
		Q1:       quantile(s, 0.25),
		Median:   quantile(s, 0.5),
		Q3:       quantile(s, 0.75),
		Outliers: make([]float64, 0),
	}
	iqr := bs.Q3 - bs.Q1
	lowFence := bs.Q1 - 1.5*iqr
	highFence := bs.Q3 + 1.5*iqr

	bs.WhiskerLow, bs.WhiskerHigh = bs.Q1, bs.Q3
	for _, x := range s {
		if x < lowFence || x > highFence {
			bs.Outliers = append(bs.Outliers, x)
			continue
		}
		if x < bs.WhiskerLow {
			bs.WhiskerLow = x
		}
		if x > bs.WhiskerHigh {
			bs.WhiskerHigh = x
		}
	}
	return bs
}
