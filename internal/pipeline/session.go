package pipeline

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/config"
	"github.com/people-analytics/workforce-planner/internal/correlation"
	"github.com/people-analytics/workforce-planner/internal/diagnostics"
	"github.com/people-analytics/workforce-planner/internal/elasticity"
	"github.com/people-analytics/workforce-planner/internal/forecast"
	"github.com/people-analytics/workforce-planner/internal/gap"
	"github.com/people-analytics/workforce-planner/internal/logging"
	"github.com/people-analytics/workforce-planner/internal/metrics"
	"github.com/people-analytics/workforce-planner/internal/scenario"
	"github.com/people-analytics/workforce-planner/internal/strategy"
	"github.com/people-analytics/workforce-planner/internal/utils/unitmap"
)

// Session is one planning context. It is safe for concurrent use.
type Session struct {
	id       uuid.UUID
	cfg      *config.PlannerConfig
	roleData config.RoleAssumptionsData
	match    unitmap.MatchConfig
	recorder *metrics.Recorder

	mu        sync.Mutex
	clock     uint64
	inputs    v1alpha1.PlanInputs
	versions  map[Table]uint64
	snapshots map[Table]*Snapshot
}

var _ ReadWriter = (*Session)(nil)

// SessionOption customizes a new Session.
type SessionOption func(*Session)

// WithRecorder records stage metrics on r.
func WithRecorder(r *metrics.Recorder) SessionOption {
	return func(s *Session) { s.recorder = r }
}

// WithMatchConfig replaces the unit matching options taken from the config.
func WithMatchConfig(m unitmap.MatchConfig) SessionOption {
	return func(s *Session) { s.match = m }
}

// NewSession creates a session over cfg. A nil cfg uses config.Default().
// in may be nil; input tables can be set later through the Writer methods.
func NewSession(cfg *config.PlannerConfig, in *v1alpha1.PlanInputs, opts ...SessionOption) *Session {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Session{
		id:        uuid.New(),
		cfg:       cfg,
		roleData:  config.ParseRoleAssumptions(cfg.RoleAssumptions),
		match:     cfg.UnitMap.MatchConfig(),
		versions:  make(map[Table]uint64),
		snapshots: make(map[Table]*Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if in != nil {
		s.SetInputs(in)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Config returns the configuration the session computes with.
func (s *Session) Config() *config.PlannerConfig {
	return s.cfg
}

// Inputs returns a copy of the current input tables.
// Stored tables are replaced on write, never modified in place.
func (s *Session) Inputs() v1alpha1.PlanInputs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inputs
}

// Version returns the current version of table.
func (s *Session) Version(table Table) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versionLocked(table)
}

func (s *Session) versionLocked(table Table) uint64 {
	if IsDerived(table) {
		if snap := s.snapshots[table]; snap != nil {
			return snap.Version
		}
		return 0
	}
	return s.versions[table]
}

// LastComputed returns when table was last published.
func (s *Session) LastComputed(table Table) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap := s.snapshots[table]; snap != nil {
		return snap.ComputedAt
	}
	return time.Time{}
}

// IsStale reports whether table or any stage it depends on would be recomputed on read.
func (s *Session) IsStale(table Table) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.staleLocked(table)
}

func (s *Session) staleLocked(table Table) bool {
	if !IsDerived(table) {
		return false
	}
	snap := s.snapshots[table]
	if snap == nil {
		return true
	}
	for _, dep := range dependencies[table] {
		if IsDerived(dep) && s.staleLocked(dep) {
			return true
		}
		if snap.DependsOn[dep] != s.versionLocked(dep) {
			return true
		}
	}
	return false
}

// bumpLocked marks tables as changed.
func (s *Session) bumpLocked(tables ...Table) {
	for _, t := range tables {
		s.clock++
		s.versions[t] = s.clock
	}
}

// SetInputs replaces every input table.
func (s *Session) SetInputs(in *v1alpha1.PlanInputs) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = *in
	s.inputs.StrategicImpact = maps.Clone(in.StrategicImpact)
	s.inputs.ModelOverrides = maps.Clone(in.ModelOverrides)
	s.inputs.StrategyOverrides = maps.Clone(in.StrategyOverrides)
	s.bumpLocked(InputTables...)
}

func (s *Session) SetDrivers(drivers []v1alpha1.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Drivers = drivers
	s.bumpLocked(TableDrivers)
}

func (s *Session) SetFunctionUnits(units []v1alpha1.FunctionUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.FunctionUnits = units
	s.bumpLocked(TableFunctionUnits)
}

func (s *Session) SetRoles(roles []v1alpha1.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Roles = roles
	s.bumpLocked(TableRoles)
}

func (s *Session) SetForecastMethod(method v1alpha1.ForecastMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.ForecastMethod = method
	s.bumpLocked(TableForecastMethod)
}

func (s *Session) SetScenario(assumptions v1alpha1.ScenarioAssumptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.Scenario = assumptions
	s.bumpLocked(TableAssumptions)
}

func (s *Session) SetStrategicImpact(role string, impact float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.StrategicImpact = withEntry(s.inputs.StrategicImpact, role, &impact)
	s.bumpLocked(TableStrategicImpact)
}

// SetModelOverride selects the elasticity model of driver.
func (s *Session) SetModelOverride(driver string, model *v1alpha1.ModelType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.ModelOverrides = withEntry(s.inputs.ModelOverrides, driver, model)
	s.bumpLocked(TableModelOverrides)
}

// SetStrategyOverride selects the strategy of role.
func (s *Session) SetStrategyOverride(role string, strategy *v1alpha1.Strategy) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs.StrategyOverrides = withEntry(s.inputs.StrategyOverrides, role, strategy)
	s.bumpLocked(TableStrategyOverrides)
}

// withEntry returns a copy of m with key set to *v, or removed when v is nil.
func withEntry[V any](m map[string]V, key string, v *V) map[string]V {
	out := maps.Clone(m)
	if out == nil {
		out = make(map[string]V)
	}
	if v == nil {
		delete(out, key)
	} else {
		out[key] = *v
	}
	return out
}

// Invalidate drops the snapshot of table.
func (s *Session) Invalidate(table Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snapshots, table)
}

// Snapshot returns the current snapshot of table, recomputing it and any stale
// upstream stage first.
func (s *Session) Snapshot(ctx context.Context, table Table) (*Snapshot, error) {
	if !IsDerived(table) {
		return nil, fmt.Errorf("table %q is not a derived table", table)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	upstream := make(map[Table]*Snapshot)
	for _, dep := range dependencies[table] {
		if !IsDerived(dep) {
			continue
		}
		snap, err := s.Snapshot(ctx, dep)
		if err != nil {
			return nil, err
		}
		upstream[dep] = snap
	}

	s.mu.Lock()
	if cur := s.snapshots[table]; cur != nil && s.freshLocked(cur, upstream) {
		s.mu.Unlock()
		return cur, nil
	}
	in := s.inputs
	deps := make(map[Table]uint64, len(dependencies[table]))
	for _, dep := range dependencies[table] {
		if snap, ok := upstream[dep]; ok {
			deps[dep] = snap.Version
		} else {
			deps[dep] = s.versions[dep]
		}
	}
	s.mu.Unlock()

	logger := logging.FromContext(ctx).WithValues("session", s.id.String(), "table", string(table))
	logger.V(logging.DEBUG).Info("Recomputing table", "dependsOn", deps)

	start := time.Now()
	value, report, err := s.compute(ctx, table, &in, upstream)
	elapsed := time.Since(start)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	s.recorder.ObserveStage(string(table), elapsed, report, err)
	if err != nil {
		logger.Info("Stage refused", "reason", err.Error())
	}

	return s.publish(&Snapshot{
		Table:     table,
		DependsOn: deps,
		Value:     value,
		Report:    report,
		Err:       err,
	}), nil
}

// freshLocked reports whether cur was computed from the current inputs and upstream snapshots.
func (s *Session) freshLocked(cur *Snapshot, upstream map[Table]*Snapshot) bool {
	for _, dep := range dependencies[cur.Table] {
		want := s.versions[dep]
		if snap, ok := upstream[dep]; ok {
			want = snap.Version
		}
		if cur.DependsOn[dep] != want {
			return false
		}
	}
	return true
}

// publish swaps snap in unless a concurrent reader already published a snapshot
// computed from dependencies at least as recent.
func (s *Session) publish(snap *Snapshot) *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur := s.snapshots[snap.Table]; cur != nil && !olderThan(cur.DependsOn, snap.DependsOn) {
		return cur
	}
	s.clock++
	snap.Version = s.clock
	snap.ComputedAt = time.Now()
	s.snapshots[snap.Table] = snap
	return snap
}

// olderThan reports whether any version in have precedes the one in want.
func olderThan(have, want map[Table]uint64) bool {
	for t, v := range want {
		if have[t] < v {
			return true
		}
	}
	return false
}

func (s *Session) compute(ctx context.Context, table Table, in *v1alpha1.PlanInputs, upstream map[Table]*Snapshot) (any, diagnostics.Report, error) {
	switch table {
	case TableCorrelation:
		mapped, discovery, err := unitmap.Apply(ctx, in, s.match)
		if err != nil {
			mapped = in
		} else if unmapped := discovery.Unmapped(); len(unmapped) > 0 {
			logging.FromContext(ctx).V(logging.DEBUG).Info("Drivers without function units", "drivers", unmapped)
		}
		return correlation.Filter(ctx, mapped, s.cfg.Correlation)

	case TableElasticity:
		corr, err := upstreamValue[*v1alpha1.CorrelationResult](upstream, TableCorrelation, elasticity.StageName)
		if err != nil {
			return nil, diagnostics.Report{}, err
		}
		return elasticity.Estimate(ctx, corr.Independent, in.ModelOverrides, s.cfg.Elasticity)

	case TableForecast:
		el, err := upstreamValue[*v1alpha1.ElasticityResult](upstream, TableElasticity, forecast.StageName)
		if err != nil {
			return nil, diagnostics.Report{}, err
		}
		return forecast.Forecast(ctx, in, el, s.cfg.Forecast)

	case TableScenario:
		fc, err := upstreamValue[*v1alpha1.ForecastResult](upstream, TableForecast, scenario.StageName)
		if err != nil {
			return nil, diagnostics.Report{}, err
		}
		return scenario.Project(ctx, fc, in.Scenario, s.cfg.Scenario, s.roleData)

	case TableGap:
		sc, err := upstreamValue[*v1alpha1.ScenarioResult](upstream, TableScenario, gap.StageName)
		if err != nil {
			return nil, diagnostics.Report{}, err
		}
		gaps, err := gap.Resolve(ctx, sc)
		return gaps, diagnostics.Report{}, err

	case TableStrategy:
		gaps, err := upstreamValue[*v1alpha1.GapResult](upstream, TableGap, strategy.StageName)
		if err != nil {
			return nil, diagnostics.Report{}, err
		}
		return strategy.Run(ctx, gaps, strategy.Inputs{
			Impact:    in.StrategicImpact,
			Overrides: in.StrategyOverrides,
			RoleData:  s.roleData,
		}, s.cfg.Strategy)
	}
	return nil, diagnostics.Report{}, fmt.Errorf("no stage computes table %q", table)
}

// upstreamValue returns the value of an upstream snapshot, or an InputIncompleteError
// for stage when the upstream table was refused.
func upstreamValue[T comparable](upstream map[Table]*Snapshot, table Table, stage string) (T, error) {
	var zero T
	snap := upstream[table]
	if snap == nil || snap.Err != nil {
		return zero, &diagnostics.InputIncompleteError{Stage: stage, Missing: []string{string(table)}}
	}
	v, ok := snap.Value.(T)
	if !ok || v == zero {
		return zero, &diagnostics.InputIncompleteError{Stage: stage, Missing: []string{string(table)}}
	}
	return v, nil
}
