package store

import (
	"context"
	"time"
)

type RegressionStore interface {
	CreateRegression(ctx context.Context, id, date, releaseName string) (*Regression, error)
	ReadRegressionByID(ctx context.Context, id string) (*Regression, error)
	ReadRegressionByDate(ctx context.Context, date string) (*Regression, error)
	UpdateRegressionRunning(ctx context.Context, id, releaseName string) error
	CompleteRegression(
		ctx context.Context,
		id, payload string,
		results map[string]RunResult,
		completedOn *time.Time,
	) error
	DeleteRegression(ctx context.Context, id string) error
	ListRegressions(ctx context.Context) ([]Regression, error)
	DeleteStaleRunning(ctx context.Context, beforeDate string) (int64, error)
}
