// Package stats provides the small set of statistical primitives the planner
// needs on top of gonum: correlation coefficients with two-sided p-values and
// simple ordinary least squares with slope significance.
package stats

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrTooFewPoints is returned when fewer than two paired observations are given.
	ErrTooFewPoints = errors.New("at least two paired observations are required")
	// ErrLengthMismatch is returned when paired slices differ in length.
	ErrLengthMismatch = errors.New("paired observations differ in length")
	// ErrZeroVariance is returned when either side is constant.
	ErrZeroVariance = errors.New("zero variance")
	// ErrNonFinite is returned when an input holds NaN or Inf.
	ErrNonFinite = errors.New("non-finite value")
)

const varianceEpsilon = 1e-12

func checkPaired(x, y []float64) error {
	if len(x) != len(y) {
		return ErrLengthMismatch
	}
	if len(x) < 2 {
		return ErrTooFewPoints
	}
	if floats.HasNaN(x) || floats.HasNaN(y) {
		return ErrNonFinite
	}
	for i := range x {
		if math.IsInf(x[i], 0) || math.IsInf(y[i], 0) {
			return ErrNonFinite
		}
	}
	if stat.Variance(x, nil) < varianceEpsilon || stat.Variance(y, nil) < varianceEpsilon {
		return ErrZeroVariance
	}
	return nil
}

// HasVariance reports whether values has non-zero sample variance.
func HasVariance(values []float64) bool {
	return len(values) >= 2 && stat.Variance(values, nil) >= varianceEpsilon
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// correlationPValue is the two-sided p-value of r under a t-distribution with n-2 degrees of freedom.
// n == 2 yields 1 because the statistic is undefined.
func correlationPValue(r float64, n int) float64 {
	if n <= 2 {
		return 1
	}
	if math.Abs(r) >= 1 {
		return 0
	}
	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	return twoSidedT(t, df)
}

func twoSidedT(t, df float64) float64 {
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return math.Min(1, math.Max(0, p))
}

// Pearson returns the Pearson correlation of x and y and its two-sided p-value.
func Pearson(x, y []float64) (r, p float64, err error) {
	if err := checkPaired(x, y); err != nil {
		return 0, 0, err
	}
	r = stat.Correlation(x, y, nil)
	r = math.Max(-1, math.Min(1, r))
	return r, correlationPValue(r, len(x)), nil
}

// Spearman returns the Spearman rank correlation of x and y and its two-sided p-value.
// Ties receive the average of the ranks they span.
func Spearman(x, y []float64) (rho, p float64, err error) {
	if err := checkPaired(x, y); err != nil {
		return 0, 0, err
	}
	rx, ry := Rank(x), Rank(y)
	if !HasVariance(rx) || !HasVariance(ry) {
		return 0, 0, ErrZeroVariance
	}
	rho = stat.Correlation(rx, ry, nil)
	rho = math.Max(-1, math.Min(1, rho))
	return rho, correlationPValue(rho, len(x)), nil
}

// Rank returns the 1-based ranks of values with ties averaged.
func Rank(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	ranks := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// Fit is the result of a simple linear regression y = Intercept + Slope*x.
type Fit struct {
	Intercept float64
	Slope     float64
	RSquared  float64
	// PValue is the two-sided p-value of the slope. It is 1 when undefined (two points).
	PValue float64
	N      int
}

// OLS fits y = a + b*x by ordinary least squares.
func OLS(x, y []float64) (Fit, error) {
	if err := checkPaired(x, y); err != nil {
		return Fit{}, err
	}
	alpha, beta := stat.LinearRegression(x, y, nil, false)
	if math.IsNaN(alpha) || math.IsNaN(beta) {
		return Fit{}, errors.New("singular regression")
	}
	fit := Fit{
		Intercept: alpha,
		Slope:     beta,
		RSquared:  stat.RSquared(x, y, nil, alpha, beta),
		PValue:    1,
		N:         len(x),
	}
	if fit.N <= 2 {
		return fit, nil
	}

	var ssRes float64
	for i := range x {
		e := y[i] - (alpha + beta*x[i])
		ssRes += e * e
	}
	meanX := stat.Mean(x, nil)
	var sxx float64
	for _, v := range x {
		sxx += (v - meanX) * (v - meanX)
	}
	df := float64(fit.N - 2)
	se := math.Sqrt(ssRes / df / sxx)
	switch {
	case se == 0:
		fit.PValue = 0
	default:
		fit.PValue = twoSidedT(beta/se, df)
	}
	return fit, nil
}

// LinearTrend fits value = a + b*year and evaluates it at each target year.
func LinearTrend(years []int, values []float64, targets []int) ([]float64, error) {
	if len(years) != len(values) {
		return nil, ErrLengthMismatch
	}
	if len(years) < 2 {
		return nil, ErrTooFewPoints
	}
	x := make([]float64, len(years))
	for i, y := range years {
		x[i] = float64(y)
	}
	if !HasVariance(x) {
		return nil, ErrZeroVariance
	}
	alpha, beta := stat.LinearRegression(x, values, nil, false)
	out := make([]float64, len(targets))
	for i, t := range targets {
		out[i] = alpha + beta*float64(t)
	}
	return out, nil
}
