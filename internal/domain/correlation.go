package domain

import (
	"encoding/json"
	"math"
)

// CorrelationFields are the variables of the correlation heatmap, in row/column order.
var CorrelationFields = []string{ColDuration, ColHumanFatality, ColAnimalFatality}

// Coefficient is a Pearson correlation that may be undefined. Undefined
// coefficients marshal as JSON null.
type Coefficient float64

// Defined reports whether the coefficient has a value.
func (c Coefficient) Defined() bool { return !math.IsNaN(float64(c)) }

func (c Coefficient) MarshalJSON() ([]byte, error) {
	if !c.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(c))
}

func (c *Coefficient) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = Coefficient(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*c = Coefficient(f)
	return nil
}

// CorrelationMatrix is the annotated heatmap block.
type CorrelationMatrix struct {
	Fields []string        `json:"fields"`
	Values [][]Coefficient `json:"values"`
}

// BuildCorrelationMatrix computes pairwise-complete Pearson coefficients over
// Duration, Human fatality and Animal Fatality. Records without a duration are
// excluded only from pairs involving Duration.
func BuildCorrelationMatrix(v *FilteredView) CorrelationMatrix {
	m := CorrelationMatrix{Fields: CorrelationFields, Values: make([][]Coefficient, 0)}
	if v.Empty() {
		return m
	}

	columns := make([][]float64, len(CorrelationFields))
	for i := range columns {
		columns[i] = make([]float64, v.Len())
	}
	for i := range v.Records {
		r := &v.Records[i]
		columns[0][i] = r.Duration
		columns[1][i] = float64(r.HumanFatality)
		columns[2][i] = float64(r.AnimalFatality)
	}

	k := len(CorrelationFields)
	m.Values = make([][]Coefficient, k)
	for i := range m.Values {
		m.Values[i] = make([]Coefficient, k)
	}
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			x, y := complete(columns[i], columns[j])
			c := Coefficient(pearson(x, y))
			if i == j && c.Defined() {
				c = 1
			}
			m.Values[i][j] = c
			m.Values[j][i] = c
		}
	}
	return m
}

// complete drops index positions where either series is NaN.
func complete(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}
