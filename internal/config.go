package internal

import (
	"log"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/haatos/casetrack/internal/util"
)

var Columns *ColumnConfig

// ColumnConfig holds the report column widths. The widths are supplied by
// the operator and passed through to report consumers as-is.
type ColumnConfig struct {
	TestID     float64 `yaml:"test_id"`
	Category   float64 `yaml:"category"`
	ShortTitle float64 `yaml:"short_title"`
	Scenario   float64 `yaml:"scenario"`
	Status     float64 `yaml:"status"`
	Priority   float64 `yaml:"priority"`
	IssueLink  float64 `yaml:"issue_link"`
	Notes      float64 `yaml:"notes"`
	ReadyDate  float64 `yaml:"ready_date"`
	RunColumn  float64 `yaml:"run_column"`
}

func defaultColumnConfig() *ColumnConfig {
	return &ColumnConfig{
		TestID:     10,
		Category:   18,
		ShortTitle: 32,
		Scenario:   60,
		Status:     14,
		Priority:   10,
		IssueLink:  24,
		Notes:      30,
		ReadyDate:  12,
		RunColumn:  12,
	}
}

func InitializeColumnConfig() {
	Columns = defaultColumnConfig()

	configFileExists, _ := util.PathExists(ColumnConfigPath)
	if !configFileExists {
		b, err := yaml.Marshal(Columns)
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(ColumnConfigPath, b, 0o644); err != nil {
			log.Fatal(err)
		}
	} else {
		configBytes, err := os.ReadFile(ColumnConfigPath)
		if err != nil {
			log.Fatal(err)
		}
		if err := yaml.Unmarshal(configBytes, Columns); err != nil {
			log.Fatal(err)
		}
	}
}
