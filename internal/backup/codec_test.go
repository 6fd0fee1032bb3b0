package backup

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/alexanderramin/daylog/internal/domain"
	"github.com/alexanderramin/daylog/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Deterministic(t *testing.T) {
	snap := domain.Snapshot{
		Categories: map[domain.Category]domain.CategorySnapshot{
			domain.CategorySleep: {Archived: domain.CategoryLog{"2024-01-01": {testutil.NewSleepRecord(7, testutil.WithRecordID("a"))}}},
			domain.CategoryWork:  {Pending: domain.CategoryLog{"2024-01-05": {testutil.NewTestRecord(testutil.WithRecordID("b"))}}},
		},
		ImportantDates: domain.ImportantDates{"2024-02-14": {Type: domain.ImportantAnniversary, Label: "x"}},
	}

	first, err := Encode(snap)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Encode(snap)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	decoded, err := Decode(first)
	require.NoError(t, err)
	assert.Equal(t, 2, decoded.RecordCount())
	assert.Equal(t, "x", decoded.ImportantDates["2024-02-14"].Label)
}

func TestDecode_AcceptsFlatFormat(t *testing.T) {
	flat := `{
		"sleepData": {"2024-01-01": [{"duration": 7, "timestamp": "2024-01-01T23:00:00.000Z"}]},
		"financeData": {"2024-01-02": {"expenses": [{"amount": 5, "category": "food"}], "incomes": []}},
		"importantDates": {"2024-02-14": {"type": "anniversary", "label": "x", "addedDate": "2024-01-01"}}
	}`

	snap, err := Decode(base64.StdEncoding.EncodeToString([]byte(flat)))
	require.NoError(t, err)

	sleep := snap.Categories[domain.CategorySleep].Archived["2024-01-01"]
	require.Len(t, sleep, 1)
	assert.Equal(t, 7.0, sleep[0].Number("duration"))
	assert.Equal(t, time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC), sleep[0].Timestamp.UTC())

	finance := snap.Categories[domain.CategoryFinance].Archived["2024-01-02"]
	require.Len(t, finance, 1)
	assert.Equal(t, "food", finance[0].Items("expenses")[0].Text("category"))
	assert.Len(t, snap.ImportantDates, 1)
}

func TestDecode_FlatFormatWithPendingAndIslandKeys(t *testing.T) {
	flat := `{
		"sleepData": {"2024-01-01": [{"duration": 7, "timestamp": "2024-01-01T23:00:00.000Z"}]},
		"sleepData_TEMP": {"2024-01-02": [{"duration": 6, "timestamp": "2024-01-02T22:30:00.000Z"}]},
		"islandInteractions": {"2024-01-01": {"tree": 2}},
		"islandInteractions_TEMP": {"2024-01-02": {"rock": 1}},
		"importantDates": {}
	}`

	snap, err := Decode(base64.StdEncoding.EncodeToString([]byte(flat)))
	require.NoError(t, err)

	sleep := snap.Categories[domain.CategorySleep]
	require.Len(t, sleep.Archived["2024-01-01"], 1)
	require.Len(t, sleep.Pending["2024-01-02"], 1)
	assert.Equal(t, 6.0, sleep.Pending["2024-01-02"][0].Number("duration"))
	assert.Len(t, snap.Categories, 1)
	assert.Equal(t, 2, snap.RecordCount())
}

func TestDecodeJSON(t *testing.T) {
	snap, err := DecodeJSON([]byte(`{"categories":{"sleep":{"pending":{},"archived":{"2024-01-01":[{"duration":7,"timestamp":"2024-01-01T23:00:00Z"}]}}}}`))
	require.NoError(t, err)
	assert.Equal(t, 1, snap.RecordCount())

	for name, doc := range map[string]string{
		"empty object":       `{}`,
		"null categories":    `{"categories":null}`,
		"unrelated document": `{"name":"package.json","version":"1.0.0"}`,
		"unknown field":      `{"categories":{},"extra":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(doc))
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	enc := func(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

	cases := map[string]string{
		"not base64":       "@@@",
		"not json":         enc("hello"),
		"unknown category": enc(`{"categories":{"pets":{"pending":{},"archived":{}}}}`),
		"bad bucket":       enc(`{"categories":{"sleep":{"pending":{"tomorrow":[]},"archived":{}}}}`),
		"unknown field":    enc(`{"categories":{},"extra":1}`),
		"unknown flat key": enc(`{"petsData":{}}`),
		"placeholder":      `{"created":"2024-01-05T10:00:00Z"}`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(blob)
			assert.ErrorIs(t, err, ErrDecode)
		})
	}
}
