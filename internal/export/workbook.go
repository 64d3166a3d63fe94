// Package export renders a computed plan as an Excel workbook and a demand/supply chart.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/gap"
	"github.com/people-analytics/workforce-planner/internal/pipeline"
)

// Sheet names, in workbook order.
const (
	SheetCorrelation      = "Correlation"
	SheetIntercorrelation = "Intercorrelation"
	SheetElasticity       = "Elasticity"
	SheetForecast         = "Demand Forecast"
	SheetSupply           = "Scenario Supply"
	SheetSummary          = "Scenario Summary"
	SheetGaps             = "Gaps"
	SheetGapTotals        = "Gap Totals"
	SheetStrategy         = "Strategy"
	SheetDistribution     = "Strategy Distribution"
	SheetActions          = "Action Plan"
	SheetDiagnostics      = "Diagnostics"
)

const columnWidth = 18

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// Workbook builds one sheet per table of plan. Tables that were not computed
// produce a sheet with only the header row.
func Workbook(plan *pipeline.Plan) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range sheets(plan) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return nil, fmt.Errorf("renaming default sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return nil, fmt.Errorf("writing sheet %s: %w", s.name, err)
		}
	}
	return f, nil
}

// WriteWorkbook writes the workbook of plan to w in xlsx format.
func WriteWorkbook(plan *pipeline.Plan, w io.Writer) error {
	f, err := Workbook(plan)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// SaveWorkbook writes the workbook of plan to path.
func SaveWorkbook(plan *pipeline.Plan, path string) error {
	f, err := Workbook(plan)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.name, "A", lastCol, columnWidth); err != nil {
		return err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sheets(plan *pipeline.Plan) []sheet {
	return []sheet{
		correlationSheet(plan.Correlation),
		intercorrelationSheet(plan.Correlation),
		elasticitySheet(plan.Elasticity, plan.Alpha),
		forecastSheet(plan.Forecast),
		supplySheet(plan.Scenario),
		summarySheet(plan.Scenario),
		gapSheet(plan.Gaps),
		gapTotalsSheet(plan.GapTotals),
		strategySheet(plan.Strategy),
		distributionSheet(plan.Strategy),
		actionSheet(plan),
		diagnosticsSheet(plan),
	}
}

func correlationSheet(r *v1alpha1.CorrelationResult) sheet {
	s := sheet{
		name:   SheetCorrelation,
		header: []string{"Driver", "Function Units", "Method", "Correlation", "P-Value", "Significant", "Points", "Independent"},
	}
	if r == nil {
		return s
	}
	independent := make(map[string]bool, len(r.Independent))
	for _, name := range r.IndependentDrivers() {
		independent[name] = true
	}
	for _, row := range r.Rows {
		row = row.Rounded()
		s.rows = append(s.rows, []any{
			row.Driver, strings.Join(row.FunctionUnits, ", "), string(row.Method),
			row.Correlation, row.PValue, row.Significant, row.Points, independent[row.Driver],
		})
	}
	return s
}

func intercorrelationSheet(r *v1alpha1.CorrelationResult) sheet {
	s := sheet{name: SheetIntercorrelation, header: []string{"Driver"}}
	if r == nil {
		return s
	}
	s.header = append(s.header, r.Matrix.Drivers...)
	for i, name := range r.Matrix.Drivers {
		row := []any{name}
		for _, v := range r.Matrix.Values[i] {
			if v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, v1alpha1.Round(*v, v1alpha1.CoefficientPlaces))
		}
		s.rows = append(s.rows, row)
	}
	return s
}

func elasticitySheet(r *v1alpha1.ElasticityResult, alpha float64) sheet {
	s := sheet{
		name:   SheetElasticity,
		header: []string{"Driver", "Recommended Model", "Selected Model", "Elasticity", "R²", "P-Value", "Significant"},
	}
	if r == nil {
		return s
	}
	for _, rec := range r.Records {
		row := rec.Row(alpha)
		s.rows = append(s.rows, []any{
			row.Driver, string(row.RecommendedModel), string(row.SelectedModel),
			row.Elasticity, row.RSquared, row.PValue, row.Significant,
		})
	}
	return s
}

func forecastSheet(r *v1alpha1.ForecastResult) sheet {
	s := sheet{
		name:   SheetForecast,
		header: []string{"Role", "Function Unit", "Driver", "Weight", "Elasticity", "Year", "KPI", "Demand"},
	}
	if r == nil {
		return s
	}
	for _, row := range r.Rows {
		row = row.Rounded()
		s.rows = append(s.rows, []any{
			row.Role, row.FunctionUnit, row.Driver, row.Weight, row.Elasticity, row.Year, row.KPI, row.Demand,
		})
	}
	return s
}

func supplySheet(r *v1alpha1.ScenarioResult) sheet {
	s := sheet{
		name:   SheetSupply,
		header: []string{"Scenario", "Role", "Year", "Base Demand", "Scenario Demand", "Supply", "Inflow"},
	}
	if r == nil {
		return s
	}
	for _, row := range r.Rows {
		s.rows = append(s.rows, []any{
			r.Name, row.Role, row.Year,
			v1alpha1.Round(row.BaseDemand, v1alpha1.HeadcountPlaces),
			v1alpha1.Round(row.ScenarioDemand, v1alpha1.HeadcountPlaces),
			v1alpha1.Round(row.Supply, v1alpha1.HeadcountPlaces),
			v1alpha1.Round(row.Inflow, v1alpha1.HeadcountPlaces),
		})
	}
	return s
}

func summarySheet(r *v1alpha1.ScenarioResult) sheet {
	s := sheet{
		name:   SheetSummary,
		header: []string{"Year", "Base Demand", "Scenario Demand", "Supply"},
	}
	if r == nil {
		return s
	}
	for _, row := range r.Summary {
		row = row.Rounded()
		s.rows = append(s.rows, []any{row.Year, row.BaseDemand, row.ScenarioDemand, row.Supply})
	}
	return s
}

// gapTotalsSheet compares total demand, supply and gap across roles per year.
func gapTotalsSheet(totals []gap.YearTotal) sheet {
	s := sheet{
		name:   SheetGapTotals,
		header: []string{"Year", "Demand", "Supply", "Gap"},
	}
	for _, t := range totals {
		t = t.Rounded()
		s.rows = append(s.rows, []any{t.Year, t.Demand, t.Supply, t.Gap})
	}
	return s
}

func gapSheet(r *v1alpha1.GapResult) sheet {
	s := sheet{
		name:   SheetGaps,
		header: []string{"Role", "Year", "Demand", "Supply", "Gap", "Gap %", "Status"},
	}
	if r == nil {
		return s
	}
	for _, row := range r.Rows {
		row = row.Rounded()
		s.rows = append(s.rows, []any{row.Role, row.Year, row.Demand, row.Supply, row.Gap, row.GapPercent, string(row.Status)})
	}
	return s
}

func strategySheet(r *v1alpha1.StrategyResult) sheet {
	s := sheet{
		name: SheetStrategy,
		header: []string{
			"Role", "Peak Year", "Total Gap", "Mean Impact", "Auto Strategy", "Override",
			"Final Strategy", "Recommended Action", "Priority Score",
		},
	}
	if r == nil {
		return s
	}
	for _, row := range r.Priorities {
		row = row.Rounded()
		override := ""
		if row.Override != nil {
			override = string(*row.Override)
		}
		s.rows = append(s.rows, []any{
			row.Role, row.PeakYear, row.TotalGap, row.MeanImpact, string(row.AutoStrategy), override,
			string(row.FinalStrategy), row.RecommendedAction, row.PriorityScore,
		})
	}
	return s
}

func distributionSheet(r *v1alpha1.StrategyResult) sheet {
	s := sheet{
		name:   SheetDistribution,
		header: []string{"Strategy", "Year", "Roles", "Total Gap"},
	}
	if r == nil {
		return s
	}
	for _, row := range r.Distribution {
		s.rows = append(s.rows, []any{
			string(row.Strategy), row.Year, row.Roles, v1alpha1.Round(row.TotalGap, v1alpha1.HeadcountPlaces),
		})
	}
	return s
}

func actionSheet(plan *pipeline.Plan) sheet {
	s := sheet{
		name: SheetActions,
		header: []string{
			"Role", "Strategy", "Action", "Total Gap", "Priority", "Start Year", "End Year",
			"Feasibility", "Owner", "Notes",
		},
	}
	for _, in := range plan.Actions {
		s.rows = append(s.rows, []any{
			in.Role, string(in.Strategy), in.Action,
			v1alpha1.Round(in.TotalGap, v1alpha1.HeadcountPlaces), v1alpha1.Round(in.Priority, v1alpha1.HeadcountPlaces),
			in.StartYear, in.EndYear, in.Feasibility, in.Owner, in.Notes,
		})
	}
	return s
}

func diagnosticsSheet(plan *pipeline.Plan) sheet {
	s := sheet{
		name:   SheetDiagnostics,
		header: []string{"Stage", "Item", "Kind", "Message"},
	}
	for _, d := range plan.Diagnostics.Items {
		s.rows = append(s.rows, []any{d.Stage, d.Item, string(d.Kind), d.Message})
	}
	return s
}
