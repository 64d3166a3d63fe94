package export

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/people-analytics/workforce-planner/internal/pipeline"
)

// ErrNoScenario is returned when the plan has no scenario summary to chart.
var ErrNoScenario = errors.New("plan has no scenario summary")

// Chart dimensions.
const (
	ChartWidth  = 10 * vg.Inch
	ChartHeight = 6 * vg.Inch
)

var (
	demandColor = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	baseColor   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	supplyColor = color.RGBA{R: 34, G: 139, B: 34, A: 255}
)

// DemandSupplyChart plots total base demand, scenario demand and supply per year.
func DemandSupplyChart(plan *pipeline.Plan) (*plot.Plot, error) {
	if plan.Scenario == nil || len(plan.Scenario.Summary) == 0 {
		return nil, ErrNoScenario
	}
	summary := plan.Scenario.Summary

	base := make(plotter.XYs, len(summary))
	demand := make(plotter.XYs, len(summary))
	supply := make(plotter.XYs, len(summary))
	for i, row := range summary {
		x := float64(row.Year)
		base[i] = plotter.XY{X: x, Y: row.BaseDemand}
		demand[i] = plotter.XY{X: x, Y: row.ScenarioDemand}
		supply[i] = plotter.XY{X: x, Y: row.Supply}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Demand vs Supply (%s scenario)", plan.Scenario.Name)
	p.Title.TextStyle.Font.Size = vg.Points(16)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "FTE"
	p.X.Tick.Marker = yearTicks{}
	p.Legend.Top = true

	for _, series := range []struct {
		name   string
		xys    plotter.XYs
		color  color.Color
		dashed bool
	}{
		{"Base demand", base, baseColor, true},
		{"Scenario demand", demand, demandColor, false},
		{"Supply", supply, supplyColor, false},
	} {
		line, points, err := plotter.NewLinePoints(series.xys)
		if err != nil {
			return nil, fmt.Errorf("plotting %s: %w", series.name, err)
		}
		line.Color = series.color
		line.Width = vg.Points(2)
		if series.dashed {
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		}
		points.Color = series.color
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		p.Legend.Add(series.name, line, points)
	}
	p.Add(plotter.NewGrid())
	return p, nil
}

// WriteChart renders the demand/supply chart of plan to w as PNG.
func WriteChart(plan *pipeline.Plan, w io.Writer) error {
	p, err := DemandSupplyChart(plan)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	_, err = wt.WriteTo(w)
	return err
}

// SaveChart renders the demand/supply chart of plan to path.
// The image format follows the file extension.
func SaveChart(plan *pipeline.Plan, path string) error {
	p, err := DemandSupplyChart(plan)
	if err != nil {
		return err
	}
	if err := p.Save(ChartWidth, ChartHeight, path); err != nil {
		return fmt.Errorf("saving chart %s: %w", path, err)
	}
	return nil
}

// yearTicks places one labeled tick on every whole year.
type yearTicks struct{}

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for y := int(min); float64(y) <= max; y++ {
		if float64(y) < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: float64(y), Label: fmt.Sprintf("%d", y)})
	}
	return ticks
}
