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

// Package pipeline holds planning sessions: the versioned input tables entered for
// one plan and the snapshots derived from them by each stage.
//
// Stages form a forward chain:
//
//	correlation -> elasticity -> forecast -> scenario -> gap -> strategy
//
// Every snapshot records the versions of the tables it was computed from. Changing
// an input table bumps its version, which makes every snapshot that depends on it,
// directly or through an upstream stage, stale. A stale snapshot is recomputed the
// next time it is read. Computation runs without holding the session lock and the
// finished snapshot is published under it, so readers never see a partial table.
//
// The Manager keeps independent sessions keyed by UUID.
package pipeline
