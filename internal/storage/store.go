package storage

import (
	"context"

	"polysome/internal/model"
)

// Schema and codec versions stamped onto persisted records.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// Store defines persistence operations for simulation runs and their species
// abundance time series.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run model.Run) error
	GetRun(ctx context.Context, id string) (model.Run, bool, error)
	ListRuns(ctx context.Context) ([]model.Run, error)
	SaveCounts(ctx context.Context, samples []model.CountSample) error
	GetCounts(ctx context.Context, runID string) ([]model.CountSample, error)
}
