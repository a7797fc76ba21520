package store

import (
	"fmt"
	"strings"
	"time"
)

type RegressionStatus string

const (
	// RegressionIdle is never persisted: it means no record exists for the day.
	RegressionIdle      RegressionStatus = "IDLE"
	RegressionRunning   RegressionStatus = "RUNNING"
	RegressionCompleted RegressionStatus = "COMPLETED"
)

func ParseRegressionStatus(s string) (RegressionStatus, error) {
	rs := RegressionStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch rs {
	case RegressionRunning, RegressionCompleted:
		return rs, nil
	}
	return "", fmt.Errorf("invalid regression status %q", s)
}

type Regression struct {
	RegressionID   string           `json:"regression_id"`
	RegressionDate string           `json:"regression_date"`
	ReleaseName    string           `json:"release_name"`
	Status         RegressionStatus `json:"status"`
	Payload        *string          `json:"payload,omitempty"`
	CreatedOn      time.Time        `json:"created_on"`
	CompletedOn    *time.Time       `json:"completed_on"`
}
