// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline sequences research stages over a shared state record.
//
// The runner owns one PipelineState per run and executes stages strictly
// in order: no stage begins before the previous stage's update has been
// merged, and a stage error aborts the remaining stages permanently.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// StageFunc computes a partial state update from a read view of the
// current state. Returning an error fails the whole run.
type StageFunc func(ctx context.Context, state *types.PipelineState) (types.StateUpdate, error)

// Stage is a named pipeline step.
type Stage struct {
	Name string
	Run  StageFunc
}

// Runner executes stages against a single PipelineState.
type Runner struct {
	stages []Stage
	w      io.Writer
}

// NewRunner returns a Runner over the given stages. Progress output is
// written to w.
func NewRunner(stages []Stage, w io.Writer) *Runner {
	if w == nil {
		w = io.Discard
	}
	return &Runner{stages: stages, w: w}
}

// Run executes every stage in order against state. On the first stage
// error it records "<stage> error: <cause>" in the state's error list,
// marks the run failed, and returns the error without running further
// stages. On success the run is marked completed and the completion
// timestamp is stamped. The partial state accumulated before a failure
// is preserved for reporting.
func (r *Runner) Run(ctx context.Context, state *types.PipelineState) error {
	state.Status = types.StatusRunning

	for _, stage := range r.stages {
		state.CurrentStage = stage.Name
		fmt.Fprintf(r.w, "stage %s\n", stage.Name)

		update, err := stage.Run(ctx, state)
		if err != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("%s error: %v", stage.Name, err))
			state.Status = types.StatusFailed
			fmt.Fprintf(r.w, "stage %s failed: %v\n", stage.Name, err)
			return fmt.Errorf("stage %s: %w", stage.Name, err)
		}

		update.Apply(state)
	}

	state.Status = types.StatusCompleted
	state.CurrentStage = types.StageComplete
	state.CompletedAt = time.Now().UTC()
	fmt.Fprintf(r.w, "pipeline completed\n")
	return nil
}
