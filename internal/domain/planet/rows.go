package planet

// MetricRow is one line of an Earth comparison table.
type MetricRow struct {
	Metric      Metric    `json:"metric"`
	Earth       Value     `json:"earth"`
	Planet      Value     `json:"planet"`
	Unit        string    `json:"unit"`
	PercentDiff *float64  `json:"percentDiff"`
	Similarity  *float64  `json:"similarity"`
	Direction   Direction `json:"direction"`
	Severity    Severity  `json:"severity"`
}

// NormalizeSelection returns the selected metrics in canonical order with
// duplicates and invalid entries removed. An empty selection means all
// metrics.
func NormalizeSelection(selection []Metric) []Metric {
	if len(selection) == 0 {
		return AllMetrics()
	}
	var chosen [metricCount]bool
	for _, m := range selection {
		if m.Valid() {
			chosen[m] = true
		}
	}
	out := make([]Metric, 0, len(selection))
	for m := Metric(0); m < metricCount; m++ {
		if chosen[m] {
			out = append(out, m)
		}
	}
	return out
}

// BuildRows derives the comparison rows of rec for the selected metrics,
// in canonical metric order regardless of selection order.
func BuildRows(rec Record, selection []Metric) []MetricRow {
	earth := Earth()
	metrics := NormalizeSelection(selection)
	rows := make([]MetricRow, 0, len(metrics))
	for _, m := range metrics {
		rows = append(rows, buildRow(earth, rec, m))
	}
	return rows
}

func buildRow(earth EarthReference, rec Record, m Metric) MetricRow {
	row := MetricRow{
		Metric: m,
		Earth:  m.EarthValue(earth),
		Planet: m.PlanetValue(rec),
		Unit:   m.Unit(),
	}

	if m.IsNumeric() {
		row.PercentDiff = PercentDifference(row.Planet.Num, row.Earth.Num)
		row.Similarity = SimilarityScore(row.PercentDiff)
		row.Direction = ClassifyDirection(row.PercentDiff)
		row.Severity = ClassifySeverity(row.PercentDiff)
		return row
	}

	// Categorical metrics either match Earth's category or they do not.
	row.Direction = DirectionWithin
	switch {
	case row.Planet.IsUnknown():
		row.Severity = SeverityUnknown
	case metricDefs[m].matches(earth, row.Planet.Text):
		row.Severity = SeverityMatch
	default:
		row.Severity = SeveritySignificant
	}
	return row
}

// Metrics returns the metric of every row, in row order.
func Metrics(rows []MetricRow) []Metric {
	out := make([]Metric, len(rows))
	for i, r := range rows {
		out[i] = r.Metric
	}
	return out
}

//Personal.AI order the ending
