package chart

import (
	"bytes"
	"encoding/json"
	"math"
)

// CategoryField is the column holding the category label in every Row.
const CategoryField = "category"

// Series is a labeled sequence of values aligned to a table's categories.
// Key is assigned by Pivot.
type Series struct {
	Label  string    `json:"label"`
	Key    string    `json:"key,omitempty"`
	Values []float64 `json:"values"`
}

// Row is one category of a pivoted table: one value per series key.
type Row struct {
	Category string
	Values   map[string]float64
}

// MarshalJSON flattens the row to {"category": ..., "<key>": value, ...},
// with keys in sorted order.
func (r Row) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		flat[k] = v
	}
	flat[CategoryField] = r.Category
	return json.Marshal(flat)
}

func (r *Row) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*r = Row{Values: make(map[string]float64, len(flat))}
	for k, raw := range flat {
		if k == CategoryField {
			if err := json.Unmarshal(raw, &r.Category); err != nil {
				return err
			}
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			r.Values[k] = 0
			continue
		}
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		r.Values[k] = v
	}
	return nil
}

// Table is a pivoted chart table. Keys travels with the rows so display
// labels never have to be recovered from sanitized keys.
type Table struct {
	Keys   KeyMap   `json:"keys"`
	Series []Series `json:"series"`
	Rows   []Row    `json:"rows"`
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Pivot builds one row per category with one column per series. A series
// shorter than categories, or holding NaN, contributes 0 for those points.
// Values past the last category are ignored.
func Pivot(categories []string, series []Series) Table {
	labels := make([]string, len(series))
	for i, s := range series {
		labels[i] = s.Label
	}
	km := NewKeyMap(labels)

	keyed := make([]Series, len(series))
	for i, s := range series {
		k, _ := km.Key(s.Label)
		values := make([]float64, len(categories))
		for j := range values {
			if j < len(s.Values) {
				values[j] = finite(s.Values[j])
			}
		}
		keyed[i] = Series{Label: s.Label, Key: k, Values: values}
	}

	rows := make([]Row, len(categories))
	for i, c := range categories {
		row := Row{Category: c, Values: make(map[string]float64, km.Len())}
		for _, k := range km.keys {
			row.Values[k] = 0
		}
		for _, s := range keyed {
			// A repeated label shares one column; later series win.
			row.Values[s.Key] = s.Values[i]
		}
		rows[i] = row
	}
	return Table{Keys: km, Series: keyed, Rows: rows}
}

// Pair is one category with the values of two series; nil means missing.
type Pair struct {
	Category string   `json:"category"`
	A        *float64 `json:"a"`
	B        *float64 `json:"b"`
}

// PivotPairs turns {category, a, b} points into a two-series table labeled
// seriesA and seriesB. Categories keep first-seen order; for a repeated
// category the later point's non-nil values win.
func PivotPairs(points []Pair, seriesA, seriesB string) Table {
	var categories []string
	index := make(map[string]int)
	a, b := []float64{}, []float64{}
	for _, p := range points {
		i, seen := index[p.Category]
		if !seen {
			i = len(categories)
			index[p.Category] = i
			categories = append(categories, p.Category)
			a = append(a, 0)
			b = append(b, 0)
		}
		if p.A != nil {
			a[i] = *p.A
		}
		if p.B != nil {
			b[i] = *p.B
		}
	}
	return Pivot(categories, []Series{{Label: seriesA, Values: a}, {Label: seriesB, Values: b}})
}

//Personal.AI order the ending
