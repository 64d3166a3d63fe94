package diagnostics

import (
	"fmt"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

// Diagnostic is one row of a stage report.
type Diagnostic struct {
	Stage   string `json:"stage"`
	Item    string `json:"item"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	err     error
}

// Err returns the underlying error.
func (d Diagnostic) Err() error {
	return d.err
}

// Report collects the diagnostics of one or more stages.
type Report struct {
	Items []Diagnostic `json:"items"`
}

// Add records err against item. A nil err is ignored.
func (r *Report) Add(stage, item string, err error) {
	if err == nil {
		return
	}
	r.Items = append(r.Items, Diagnostic{
		Stage:   stage,
		Item:    item,
		Kind:    KindOf(err),
		Message: err.Error(),
		err:     err,
	})
}

// Addf records a formatted message of the given kind.
func (r *Report) Addf(stage, item string, kind Kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.Items = append(r.Items, Diagnostic{Stage: stage, Item: item, Kind: kind, Message: msg, err: fmt.Errorf("%s", msg)})
}

// Merge appends the items of other.
func (r *Report) Merge(other Report) {
	r.Items = append(r.Items, other.Items...)
}

// Empty reports whether the report has no diagnostics.
func (r *Report) Empty() bool {
	return len(r.Items) == 0
}

// ByKind returns the diagnostics of the given kind.
func (r *Report) ByKind(kind Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Items {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Blocked returns the items excluded by the given stage.
func (r *Report) Blocked(stage string) []string {
	var out []string
	for _, d := range r.Items {
		if d.Stage == stage {
			out = append(out, d.Item)
		}
	}
	return out
}

// Aggregate returns all diagnostics as a single error, or nil.
func (r *Report) Aggregate() error {
	errs := make([]error, 0, len(r.Items))
	for _, d := range r.Items {
		errs = append(errs, fmt.Errorf("%s/%s: %w", d.Stage, d.Item, d.err))
	}
	return utilerrors.NewAggregate(errs)
}
