package pipeline

import (
	"context"
	"fmt"

	"PriceForecaster/internal/loader"
)

// Job loads the input file and runs the pipeline over it. Each call is an independent run.
type Job struct {
	Runner  *Runner
	Path    string
	Options loader.Options
}

// Run loads the file fresh and processes every ticker in it.
func (j *Job) Run(ctx context.Context, trigger string) (*Report, error) {
	ds, err := loader.LoadFile(j.Path, j.Options)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", j.Path, err)
	}
	return j.Runner.Run(ctx, ds, trigger), nil
}
