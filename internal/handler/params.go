package handler

import "github.com/haatos/casetrack/internal/service"

type BatchParams struct {
	RunDate string                 `json:"run_date"`
	Items   []service.UpsertParams `json:"items"`
}

type SingleUpsertParams struct {
	RunDate string `json:"run_date"`
	service.UpsertParams
}

type TestCaseParams struct {
	TestID string `param:"test_id"`
}

type StartRegressionParams struct {
	ReleaseName string `json:"release_name"`
}

type StopRegressionParams struct {
	Results map[string]string `json:"results"`
}

type RegressionParams struct {
	RegressionID string `param:"regression_id"`
}
