package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIngestService_ParseResultBundle(t *testing.T) {
	svc := NewIngestService()

	t.Run("success - single entry with labels and steps", func(t *testing.T) {
		// arrange
		blob := ResultBlob{
			Name: "a-result.json",
			Data: []byte(`{
				"name": "pay with invoice",
				"status": "passed",
				"labels": [
					{"name": "AS_ID", "value": "45"},
					{"name": "feature", "value": "checkout"}
				],
				"steps": [
					{"name": "open cart"},
					{
						"name": "submit order",
						"parameters": [{"name": "method", "value": "invoice"}],
						"steps": [{"name": "confirm"}]
					}
				]
			}`),
		}

		// act
		items, err := svc.ParseResultBundle([]ResultBlob{blob})

		// assert
		assert.NoError(t, err)
		assert.Len(t, items, 1)
		assert.Equal(t, "45", items[0].TestID)
		assert.Equal(t, "pay with invoice", items[0].ShortTitle)
		assert.Equal(t, "checkout", items[0].Category)
		assert.Empty(t, items[0].GeneralStatus)
		assert.Equal(t, "PASSED", items[0].RunResult)
		assert.Equal(
			t,
			"open cart\nsubmit order [method=invoice]\n  confirm",
			items[0].Scenario,
		)
	})

	t.Run("success - shared identifier gets ordinal suffixes by file name", func(t *testing.T) {
		// arrange
		blobs := []ResultBlob{
			{Name: "b.json", Data: resultDoc("45", "second variant", "failed")},
			{Name: "a.json", Data: resultDoc("45", "first variant", "passed")},
			{Name: "c.json", Data: resultDoc("46", "lone case", "skipped")},
		}

		// act
		items, err := svc.ParseResultBundle(blobs)

		// assert
		assert.NoError(t, err)
		assert.Len(t, items, 3)
		assert.Equal(t, "45-1", items[0].TestID)
		assert.Equal(t, "first variant", items[0].ShortTitle)
		assert.Equal(t, "45-2", items[1].TestID)
		assert.Equal(t, "second variant", items[1].ShortTitle)
		assert.Equal(t, "46", items[2].TestID)
		assert.Equal(t, "NOT_RUN", items[2].RunResult)
	})

	t.Run("success - duplicate sibling steps collapse per branch", func(t *testing.T) {
		// arrange
		blob := ResultBlob{
			Name: "a.json",
			Data: []byte(`{
				"name": "retries",
				"status": "broken",
				"labels": [{"name": "AS_ID", "value": "50"}],
				"steps": [
					{"name": "poll"},
					{"name": "poll"},
					{"name": "done", "steps": [{"name": "poll"}]}
				]
			}`),
		}

		// act
		items, err := svc.ParseResultBundle([]ResultBlob{blob})

		// assert
		assert.NoError(t, err)
		assert.Equal(t, "poll\ndone\n  poll", items[0].Scenario)
		assert.Equal(t, "FAILED", items[0].RunResult)
	})

	t.Run("failure - missing identifier label fails the bundle", func(t *testing.T) {
		// arrange
		blobs := []ResultBlob{
			{Name: "a.json", Data: resultDoc("45", "good", "passed")},
			{Name: "b.json", Data: []byte(`{"name": "no id", "status": "passed"}`)},
		}

		// act
		items, err := svc.ParseResultBundle(blobs)

		// assert
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
		assert.Nil(t, items)
	})

	t.Run("failure - malformed document", func(t *testing.T) {
		// act
		_, err := svc.ParseResultBundle([]ResultBlob{
			{Name: "broken.json", Data: []byte(`{not json`)},
		})

		// assert
		var ve *ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func resultDoc(externalID, name, status string) []byte {
	return []byte(`{
		"name": "` + name + `",
		"status": "` + status + `",
		"labels": [
			{"name": "AS_ID", "value": "` + externalID + `"},
			{"name": "feature", "value": "checkout"}
		],
		"steps": [{"name": "step one"}]
	}`)
}
