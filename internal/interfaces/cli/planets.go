package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/ExoMetrics/internal/application/catalog"
	"github.com/turtacn/ExoMetrics/internal/application/comparison"
	"github.com/turtacn/ExoMetrics/internal/domain/chart"
	"github.com/turtacn/ExoMetrics/internal/domain/planet"
	"github.com/turtacn/ExoMetrics/pkg/errors"
)

// NewPlanetsCmd groups the catalog browsing commands.
func NewPlanetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "planets",
		Aliases: []string{"planet"},
		Short:   "Browse the exoplanet catalog",
	}
	cmd.AddCommand(
		newPlanetsListCmd(),
		newPlanetsNamesCmd(),
		newPlanetsGetCmd(),
		newPlanetsSurvivabilityCmd(),
		newPlanetsExportCmd(),
		newPlanetsDistributionCmd(),
	)
	return cmd
}

type queryFlags struct {
	search      string
	starType    string
	maxDistance float64
	minScore    int
	page, limit int
}

func (qf *queryFlags) register(cmd *cobra.Command, paging bool) {
	f := cmd.Flags()
	f.StringVarP(&qf.search, "query", "q", "", "case-insensitive name search")
	f.StringVar(&qf.starType, "star-type", "", "host star spectral type")
	f.Float64Var(&qf.maxDistance, "max-distance", 0, "maximum distance in parsecs")
	f.IntVar(&qf.minScore, "min-score", 0, "minimum habitability score (0-100)")
	if paging {
		f.IntVar(&qf.page, "page", 1, "page number")
		f.IntVar(&qf.limit, "limit", 0, "page size (default: server setting)")
	}
}

func (qf *queryFlags) query(cmd *cobra.Command) (planet.Query, error) {
	q := planet.Query{
		Search:   strings.TrimSpace(qf.search),
		StarType: strings.ToUpper(strings.TrimSpace(qf.starType)),
		Page:     qf.page,
		Limit:    qf.limit,
	}
	f := cmd.Flags()
	if f.Changed("max-distance") {
		if qf.maxDistance < 0 {
			return q, errors.InvalidParam("max-distance must not be negative")
		}
		d := qf.maxDistance
		q.MaxDistance = &d
	}
	if f.Changed("min-score") {
		if qf.minScore < 0 || qf.minScore > 100 {
			return q, errors.InvalidParam("min-score must be within 0-100")
		}
		s := qf.minScore
		q.MinScore = &s
	}
	if q.Page < 0 || q.Limit < 0 {
		return q, errors.InvalidParam("page and limit must not be negative")
	}
	return q, nil
}

func newPlanetsListCmd() *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog planets",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			q, err := qf.query(cmd)
			if err != nil {
				return err
			}
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			page, err := b.List(ctx, q)
			if err != nil {
				return err
			}
			return PrintResult(cmd, cc.OutputFormat, pageView{page})
		}),
	}
	qf.register(cmd, true)
	return cmd
}

func newPlanetsNamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "Print every catalog planet name",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			names, err := b.Names(ctx)
			if err != nil {
				return err
			}
			if cc.OutputFormat == OutputJSON {
				return printJSON(cmd.OutOrStdout(), names)
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		}),
	}
}

func newPlanetsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show one catalog planet",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			p, err := b.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return PrintResult(cmd, cc.OutputFormat, planetView{p})
		}),
	}
}

type survivalFlags struct {
	mode                                       string
	tempC, water, o2, toxic, gravity, pressure float64
	radiation                                  string
}

func (sf *survivalFlags) overrides(cmd *cobra.Command) *planet.SurvivalOverrides {
	f := cmd.Flags()
	o := &planet.SurvivalOverrides{Radiation: planet.Radiation(strings.ToLower(strings.TrimSpace(sf.radiation)))}
	set := false
	for _, c := range []struct {
		flag string
		v    float64
		dst  **float64
	}{
		{"temp-c", sf.tempC, &o.TempC},
		{"water", sf.water, &o.Water},
		{"o2", sf.o2, &o.O2},
		{"toxic-gases", sf.toxic, &o.ToxicGases},
		{"gravity", sf.gravity, &o.Gravity},
		{"pressure", sf.pressure, &o.Pressure},
	} {
		if f.Changed(c.flag) {
			v := c.v
			*c.dst = &v
			set = true
		}
	}
	if !set && o.Radiation == "" {
		return nil
	}
	return o
}

func newPlanetsSurvivabilityCmd() *cobra.Command {
	sf := &survivalFlags{}
	cmd := &cobra.Command{
		Use:   "survivability <name>",
		Short: "Simulate survival on a planet",
		Long: "Scores temperature, water, atmosphere, gravity, radiation and pressure for\n" +
			"a catalog planet. Condition flags override the planet's values; with any\n" +
			"of them set, a name missing from the catalog is scored as a custom planet.",
		Args: cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			rep, err := b.Survivability(ctx, comparison.SurvivalRequest{
				Name:   args[0],
				Mode:   sf.mode,
				Params: sf.overrides(cmd),
			})
			if err != nil {
				return err
			}
			return PrintResult(cmd, cc.OutputFormat, survivalView{rep})
		}),
	}
	f := cmd.Flags()
	f.StringVar(&sf.mode, "mode", string(planet.ModeHuman), "human, microbial or terraforming")
	f.Float64Var(&sf.tempC, "temp-c", 0, "surface temperature in °C")
	f.Float64Var(&sf.water, "water", 0, "surface water coverage (0-1)")
	f.Float64Var(&sf.o2, "o2", 0, "oxygen, percent of atmosphere")
	f.Float64Var(&sf.toxic, "toxic-gases", 0, "toxic gases, percent of atmosphere")
	f.Float64Var(&sf.gravity, "gravity", 0, "surface gravity in g")
	f.Float64Var(&sf.pressure, "pressure", 0, "surface pressure in bar")
	f.StringVar(&sf.radiation, "radiation", "", "low, medium or high")
	return cmd
}

func newPlanetsExportCmd() *cobra.Command {
	qf := &queryFlags{}
	var (
		file    string
		archive bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export matching planets as CSV",
		Long: "Write matching planets as CSV to --file or stdout. With --archive the export is\n" +
			"stored in object storage and a download link is printed instead.",
		Args: cobra.NoArgs,
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			q, err := qf.query(cmd)
			if err != nil {
				return err
			}
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			if archive {
				res, err := b.Archive(ctx, q)
				if err != nil {
					return err
				}
				return PrintResult(cmd, cc.OutputFormat, exportView{res})
			}

			var w io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return errors.Wrap(err, errors.ErrCodeExportFailed, "cannot create export file")
				}
				defer f.Close()
				w = f
			}
			if err := b.ExportCSV(ctx, q, w); err != nil {
				return err
			}
			if file != "" {
				PrintSuccess(cmd, "exported to "+file)
			}
			return nil
		}),
	}
	qf.register(cmd, false)
	cmd.Flags().StringVar(&file, "file", "", "write the CSV to this path")
	cmd.Flags().BoolVar(&archive, "archive", false, "store the export in object storage")
	return cmd
}

func newPlanetsDistributionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distribution",
		Short: "Summarize catalog habitability",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, cmd *cobra.Command, cc *CLIContext, args []string) error {
			b, err := cc.Backend(ctx)
			if err != nil {
				return err
			}
			sum, err := b.Distribution(ctx)
			if err != nil {
				return err
			}
			return PrintResult(cmd, cc.OutputFormat, distributionView{sum})
		}),
	}
}

type pageView struct {
	*catalog.Page
}

func (v pageView) TableHeaders() []string {
	return []string{"Name", "Host Star", "Star Type", "Distance (pc)", "Radius", "Mass", "Score", "ESI", "Label"}
}

func (v pageView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Planets))
	for _, p := range v.Planets {
		rows = append(rows, []string{
			p.Name,
			p.HostStar,
			p.StarType,
			formatOptional(p.DistancePc),
			formatOptional(p.Radius),
			formatOptional(p.Mass),
			strconv.Itoa(p.Habitability.Score),
			strconv.Itoa(p.Habitability.ESI),
			labelColor(p.Habitability.Label).Sprint(p.Habitability.Label),
		})
	}
	return rows
}

func (v pageView) WriteText(w io.Writer) {
	for _, p := range v.Planets {
		fmt.Fprintf(w, "%-28s %3d  %s\n", p.Name, p.Habitability.Score, labelColor(p.Habitability.Label).Sprint(p.Habitability.Label))
	}
	fmt.Fprintf(w, "page %d/%d (%d planets)\n", v.Page.Page, v.TotalPages, v.Total)
}

type planetView struct {
	*planet.Planet
}

func (v planetView) fields() [][]string {
	p := v.Planet
	year := "-"
	if p.DiscoveryYear > 0 {
		year = strconv.Itoa(p.DiscoveryYear)
	}
	return [][]string{
		{"Name", p.Name},
		{"Host star", p.HostStar},
		{"Star type", p.StarType},
		{"Discovery", strings.TrimSpace(p.DiscoveryMethod + " " + year)},
		{"Distance (pc)", formatOptional(p.DistancePc)},
		{"Radius (R⊕)", formatOptional(p.Radius)},
		{"Mass (M⊕)", formatOptional(p.Mass)},
		{"Orbital period (days)", formatOptional(p.OrbitalPeriod)},
		{"Semi-major axis (AU)", formatOptional(p.SemiMajorAxisAU)},
		{"Equilibrium temp (K)", formatOptional(p.TeqK)},
		{"Star temp (K)", formatOptional(p.StarTempK)},
		{"Habitability", fmt.Sprintf("%d/100 %s", p.Habitability.Score, labelColor(p.Habitability.Label).Sprint(p.Habitability.Label))},
		{"ESI", strconv.Itoa(p.Habitability.ESI)},
	}
}

func (v planetView) TableHeaders() []string { return []string{"Field", "Value"} }

func (v planetView) TableRows() [][]string { return v.fields() }

func (v planetView) WriteText(w io.Writer) {
	for _, f := range v.fields() {
		fmt.Fprintf(w, "%-22s %s\n", f[0]+":", f[1])
	}
}

type exportView struct {
	*catalog.ExportResult
}

func (v exportView) WriteText(w io.Writer) {
	if v.Export != nil {
		fmt.Fprintf(w, "Archived %d planets (%d bytes) as %s\n", v.Export.Rows, v.Export.SizeBytes, v.Export.ObjectKey)
	}
	fmt.Fprintf(w, "Download: %s\n", v.URL)
}

type distributionView struct {
	*chart.HabitabilitySummary
}

func (v distributionView) TableHeaders() []string { return []string{"Range", "Count"} }

func (v distributionView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.Ranges))
	for _, r := range v.Ranges {
		rows = append(rows, []string{r.Range, strconv.Itoa(r.Count)})
	}
	return rows
}

func (v distributionView) WriteText(w io.Writer) {
	fmt.Fprintf(w, "%d planets, %.1f%% habitable\n", v.Total, v.HabitablePercentage)
	for _, g := range v.Groups {
		fmt.Fprintf(w, "  %-14s %5d  %5.1f%%  avg %.1f\n", g.Label, g.Count, g.Percentage, g.AvgScore)
	}
	for _, r := range v.Ranges {
		fmt.Fprintf(w, "  %-14s %5d\n", r.Range, r.Count)
	}
}

type survivalView struct {
	*comparison.SurvivalReport
}

func (v survivalView) fields() [][]string {
	r := v.Result
	b := r.Breakdown
	rows := [][]string{
		{"Planet", v.Name + " (" + v.Source + ")"},
		{"Mode", string(r.Mode)},
		{"Score", fmt.Sprintf("%d/100 %s", r.Score, statusColor(r.Status).Sprint(r.Status))},
		{"Temperature", formatFactor(b.Temp)},
		{"Water", formatFactor(b.Water)},
		{"Atmosphere", formatFactor(b.Atmosphere)},
		{"Gravity", formatFactor(b.Gravity)},
		{"Radiation", formatFactor(b.Radiation)},
		{"Pressure", formatFactor(b.Pressure)},
		{"Colonization difficulty", strconv.Itoa(v.ColonizationDifficulty)},
		{"Recommendation", r.Recommendation},
	}
	if v.RecommendedPlanet != "" {
		rows = append(rows, []string{"Most survivable", v.RecommendedPlanet})
	}
	return rows
}

func formatFactor(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func (v survivalView) TableHeaders() []string { return []string{"Field", "Value"} }

func (v survivalView) TableRows() [][]string { return v.fields() }

func (v survivalView) WriteText(w io.Writer) {
	for _, f := range v.fields() {
		fmt.Fprintf(w, "%-24s %s\n", f[0]+":", f[1])
	}
}

//Personal.AI order the ending
