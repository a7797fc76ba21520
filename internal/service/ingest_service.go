package service

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/haatos/casetrack/internal/store"
)

const (
	externalIDLabel = "AS_ID"
	categoryLabel   = "feature"
)

// ResultBlob is one named file from an uploaded result bundle.
type ResultBlob struct {
	Name string
	Data []byte
}

type resultLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resultStepParameter struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type resultStep struct {
	Name       string                `json:"name"`
	Parameters []resultStepParameter `json:"parameters"`
	Steps      []resultStep          `json:"steps"`
}

type resultEntry struct {
	Name   string        `json:"name"`
	Status string        `json:"status"`
	Labels []resultLabel `json:"labels"`
	Steps  []resultStep  `json:"steps"`
}

type IngestServicer interface {
	ParseResultBundle(blobs []ResultBlob) ([]UpsertParams, error)
}

type IngestService struct{}

func NewIngestService() *IngestService {
	return &IngestService{}
}

// ParseResultBundle turns a bundle of raw result files into upsert batch
// items. Entries sharing an external identifier become siblings with ordinal
// suffixes, ordered by source file name. Any entry without the identifier
// label fails the whole bundle. The documents carry no general status, so the
// items leave it unset; ImportBatch defaults it for newly created test cases.
func (s *IngestService) ParseResultBundle(blobs []ResultBlob) ([]UpsertParams, error) {
	sorted := slices.Clone(blobs)
	slices.SortFunc(sorted, func(a, b ResultBlob) int {
		return strings.Compare(a.Name, b.Name)
	})

	type parsedEntry struct {
		externalID string
		params     UpsertParams
	}
	entries := make([]parsedEntry, 0, len(sorted))
	perID := make(map[string]int)
	for _, blob := range sorted {
		entry := resultEntry{}
		if err := json.Unmarshal(blob.Data, &entry); err != nil {
			return nil, NewValidationError(
				"file", "result file %s is not a valid result document", blob.Name)
		}

		externalID := labelValue(entry.Labels, externalIDLabel)
		if externalID == "" {
			return nil, NewValidationError(
				externalIDLabel, "result file %s has no %s label", blob.Name, externalIDLabel)
		}

		entries = append(entries, parsedEntry{
			externalID: externalID,
			params: UpsertParams{
				TestID:     externalID,
				ShortTitle: entry.Name,
				Scenario:   flattenSteps(entry.Steps),
				Category:   labelValue(entry.Labels, categoryLabel),
				RunResult:  mapResultStatus(entry.Status),
			},
		})
		perID[externalID]++
	}

	ordinals := make(map[string]int)
	items := make([]UpsertParams, 0, len(entries))
	for _, entry := range entries {
		params := entry.params
		if perID[entry.externalID] > 1 {
			ordinals[entry.externalID]++
			params.TestID = fmt.Sprintf("%s-%d", entry.externalID, ordinals[entry.externalID])
		}
		items = append(items, params)
	}
	return items, nil
}

func labelValue(labels []resultLabel, name string) string {
	for _, label := range labels {
		if label.Name == name {
			return strings.TrimSpace(label.Value)
		}
	}
	return ""
}

func mapResultStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "passed":
		return string(store.RunPassed)
	case "failed", "broken":
		return string(store.RunFailed)
	default:
		return string(store.RunNotRun)
	}
}

// flattenSteps renders the nested step tree as indented text. Duplicate
// sibling steps are emitted once per branch.
func flattenSteps(steps []resultStep) string {
	var b strings.Builder
	writeSteps(&b, steps, 0)
	return strings.TrimRight(b.String(), "\n")
}

func writeSteps(b *strings.Builder, steps []resultStep, depth int) {
	seen := make(map[string]struct{})
	for _, step := range steps {
		line := formatStep(step)
		if line == "" {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}

		for range depth {
			b.WriteString("  ")
		}
		b.WriteString(line)
		b.WriteString("\n")
		writeSteps(b, step.Steps, depth+1)
	}
}

func formatStep(step resultStep) string {
	name := strings.TrimSpace(step.Name)
	if name == "" {
		return ""
	}
	if len(step.Parameters) == 0 {
		return name
	}
	params := make([]string, 0, len(step.Parameters))
	for _, p := range step.Parameters {
		params = append(params, fmt.Sprintf("%s=%s", p.Name, p.Value))
	}
	return fmt.Sprintf("%s [%s]", name, strings.Join(params, ", "))
}
