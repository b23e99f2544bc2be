package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

type compareOptions struct {
	mass, radius, teq, period   float64
	starType, atmosphere, activ string
	recordFile                  string
	metrics                     []string
}

// NewCompareCmd compares a catalog planet or an ad-hoc record with Earth.
func NewCompareCmd() *cobra.Command {
	o := &compareOptions{}
	cmd := &cobra.Command{
		Use:   "compare [planet-name]",
		Short: "Compare a planet with Earth",
		Long: "Compare a catalog planet (by name) or an ad-hoc record (from flags or --record-file)\n" +
			"with Earth. Ad-hoc records are compared offline unless --server is set.",
		Example: "  exoctl compare \"Kepler-442 b\"\n" +
			"  exoctl compare --mass 2.3 --radius 1.34 --teq 233 --period 112.3 --star-type K\n" +
			"  exoctl compare --record-file planet.yaml --metrics Gravity,Density -o table",
		Args: cobra.MaximumNArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			req, err := o.request(cmd, args)
			if err != nil {
				return err
			}
			var res *comparison.Result
			if req.Record != nil && cc.ServerAddr == "" {
				res, err = offlineCompare(ctx, req, cc.Logger)
			} else {
				var b Backend
				if b, err = cc.Backend(ctx); err != nil {
					return err
				}
				res, err = b.Compare(ctx, req)
			}
			if err != nil {
				return err
			}
			return PrintResult(cmd, cc.OutputFormat, comparisonView{res})
		}),
	}

	f := cmd.Flags()
	f.Float64Var(&o.mass, "mass", 0, "planet mass in Earth masses")
	f.Float64Var(&o.radius, "radius", 0, "planet radius in Earth radii")
	f.Float64Var(&o.teq, "teq", 0, "equilibrium temperature in K")
	f.Float64Var(&o.period, "period", 0, "orbital period in days")
	f.StringVar(&o.starType, "star-type", "", "host star spectral type (O, B, A, F, G, K, M)")
	f.StringVar(&o.atmosphere, "atmosphere", "", "atmosphere description")
	f.StringVar(&o.activ, "activity", "", "stellar activity description")
	f.StringVarP(&o.recordFile, "record-file", "f", "", "YAML or JSON file holding a planet record")
	f.StringSliceVarP(&o.metrics, "metrics", "m", nil, "metrics to compare (default: all)")
	return cmd
}

var recordFlags = []string{"mass", "radius", "teq", "period", "star-type", "atmosphere", "activity"}

func (o *compareOptions) request(cmd *cobra.Command, args []string) (comparison.Request, error) {
	req := comparison.Request{Metrics: o.metrics}
	if len(args) == 1 {
		req.Name = strings.TrimSpace(args[0])
	}

	rec, err := o.record(cmd)
	if err != nil {
		return req, err
	}
	switch {
	case rec != nil && req.Name != "":
		return req, errors.InvalidParam("give either a planet name or record values, not both")
	case rec == nil && req.Name == "":
		return req, errors.InvalidParam("a planet name or record values are required")
	}
	req.Record = rec
	return req, nil
}

// record merges --record-file with the record flags; flags win.
func (o *compareOptions) record(cmd *cobra.Command) (*planet.Record, error) {
	var rec *planet.Record
	if o.recordFile != "" {
		r, err := readRecord(o.recordFile)
		if err != nil {
			return nil, err
		}
		rec = r
	}

	f := cmd.Flags()
	setNum := func(name string, v float64, dst **float64) {
		if f.Changed(name) {
			*dst = planet.F(v)
		}
	}
	setText := func(name, v string, dst *string) {
		if f.Changed(name) {
			*dst = v
		}
	}
	changed := false
	for _, name := range recordFlags {
		changed = changed || f.Changed(name)
	}
	if !changed {
		return rec, nil
	}
	if rec == nil {
		rec = &planet.Record{Name: "Custom planet"}
	}
	setNum("mass", o.mass, &rec.Mass)
	setNum("radius", o.radius, &rec.Radius)
	setNum("teq", o.teq, &rec.TeqK)
	setNum("period", o.period, &rec.OrbitalPeriod)
	setText("star-type", o.starType, &rec.StarType)
	setText("atmosphere", o.atmosphere, &rec.Atmosphere)
	setText("activity", o.activ, &rec.StellarActivity)
	return rec, nil
}

func readRecord(path string) (*planet.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "cannot open record file")
	}
	defer f.Close()
	return decodeRecord(f)
}

// decodeRecord reads one record in YAML, which also accepts JSON.
func decodeRecord(r io.Reader) (*planet.Record, error) {
	var rec planet.Record
	if err := yaml.NewDecoder(r).Decode(&rec); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadRequest, "invalid record file")
	}
	if strings.TrimSpace(rec.Name) == "" {
		rec.Name = "Custom planet"
	}
	return &rec, nil
}

func offlineCompare(ctx context.Context, req comparison.Request, logger logging.Logger) (*comparison.Result, error) {
	svc, err := comparison.NewService(comparison.Deps{Logger: logger})
	if err != nil {
		return nil, err
	}
	return svc.Compare(ctx, req)
}

type comparisonView struct {
	*comparison.Result
}

func (v comparisonView) TableHeaders() []string {
	return []string{"Metric", "Earth", "Planet", "Difference", "Similarity", "Direction", "Severity"}
}

func (v comparisonView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Rows))
	for _, r := range v.Rows {
		rows = append(rows, []string{
			r.Metric.String(),
			withUnit(r.Earth, r.Unit),
			withUnit(r.Planet, r.Unit),
			formatPercent(r.PercentDiff, true),
			formatPercent(r.Similarity, false),
			string(r.Direction),
			severityColor(r.Severity).Sprint(string(r.Severity)),
		})
	}
	return rows
}

func (v comparisonView) WriteText(w io.Writer) {
	fmt.Fprintf(w, "%s (%s)\n", v.Name, v.Source)
	h := v.Habitability
	fmt.Fprintf(w, "Habitability: %d/100 %s\n", h.Score, labelColor(h.Label).Sprint(h.Label))
	if v.Hybrid != nil {
		fmt.Fprintf(w, "Catalog score: %d/100 %s (ESI %d)\n",
			v.Hybrid.Score, labelColor(v.Hybrid.Label).Sprint(v.Hybrid.Label), v.Hybrid.ESI)
	}
	if v.Tag != "" {
		fmt.Fprintf(w, "Tag: %s\n", v.Tag)
	}
	fmt.Fprintln(w)
	for _, r := range v.Rows {
		line := fmt.Sprintf("  %-20s Earth %-16s Planet %-16s", r.Metric.String(), withUnit(r.Earth, r.Unit), withUnit(r.Planet, r.Unit))
		if r.PercentDiff != nil {
			line += fmt.Sprintf(" %s (%s)", formatPercent(r.PercentDiff, true), severityColor(r.Severity).Sprint(string(r.Severity)))
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
}

//Personal.AI order the ending
