/*
Copyright 2025 The Workforce Planner Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package collector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/people-analytics/workforce-planner/api/v1alpha1"
	"github.com/people-analytics/workforce-planner/internal/logging"
)

// ErrTimeout is returned when a source does not answer within its timeout.
var ErrTimeout = errors.New("source timed out")

// FileSource reads a plan file in YAML or JSON.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Name returns "file:" followed by the base name of the file.
func (s *FileSource) Name() string {
	return "file:" + filepath.Base(s.Path)
}

// Collect reads and decodes the plan file.
func (s *FileSource) Collect(ctx context.Context) (*v1alpha1.PlanInputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}
	in, err := DecodePlan(data)
	if err != nil {
		return nil, fmt.Errorf("decoding plan file %s: %w", s.Path, err)
	}
	logging.FromContext(ctx).V(logging.DEBUG).Info("Plan file loaded",
		"path", s.Path, "tables", Present(in))
	return in, nil
}

// StaticSource returns fixed inputs.
type StaticSource struct {
	Inputs *v1alpha1.PlanInputs
}

// Name returns "static".
func (s *StaticSource) Name() string {
	return "static"
}

// Collect returns the fixed inputs.
func (s *StaticSource) Collect(ctx context.Context) (*v1alpha1.PlanInputs, error) {
	if s.Inputs == nil {
		return nil, errors.New("static source has no inputs")
	}
	return s.Inputs, ctx.Err()
}

// TimeoutSource bounds the Collect call of another source.
type TimeoutSource struct {
	Inner   Source
	Timeout time.Duration
}

// WithTimeout wraps inner so that Collect fails with ErrTimeout after timeout.
// A zero timeout returns inner unchanged.
func WithTimeout(inner Source, timeout time.Duration) Source {
	if timeout <= 0 {
		return inner
	}
	return &TimeoutSource{Inner: inner, Timeout: timeout}
}

// Name returns the name of the wrapped source.
func (s *TimeoutSource) Name() string {
	return s.Inner.Name()
}

// Collect runs the wrapped Collect with a deadline.
func (s *TimeoutSource) Collect(ctx context.Context) (*v1alpha1.PlanInputs, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	type result struct {
		in  *v1alpha1.PlanInputs
		err error
	}
	ch := make(chan result, 1)
	go func() {
		in, err := s.Inner.Collect(ctx)
		ch <- result{in, err}
	}()

	select {
	case r := <-ch:
		return r.in, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s after %v: %w", s.Inner.Name(), s.Timeout, ErrTimeout)
		}
		return nil, ctx.Err()
	}
}

// FallbackSource degrades to a fallback source when the primary fails.
type FallbackSource struct {
	Primary  Source
	Fallback Source
}

// WithFallback returns a source that answers from fallback when primary fails.
func WithFallback(primary, fallback Source) Source {
	return &FallbackSource{Primary: primary, Fallback: fallback}
}

// Name returns the name of the primary source.
func (s *FallbackSource) Name() string {
	return s.Primary.Name()
}

// Collect tries the primary source and falls back on error.
func (s *FallbackSource) Collect(ctx context.Context) (*v1alpha1.PlanInputs, error) {
	in, err := s.Primary.Collect(ctx)
	if err == nil {
		return in, nil
	}
	logging.FromContext(ctx).Info("Primary source failed, using fallback",
		"primary", s.Primary.Name(),
		"fallback", s.Fallback.Name(),
		"error", err)
	in, ferr := s.Fallback.Collect(ctx)
	if ferr != nil {
		return nil, errors.Join(err, ferr)
	}
	return in, nil
}
