package input

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakestephens/banner/internal/history"
)

func TestStdinAdapter_Name(t *testing.T) {
	adapter := NewStdinAdapter()
	assert.Equal(t, "stdin", adapter.Name())
}

func TestStdinAdapter_Import_JSONArray(t *testing.T) {
	input := `[
		{"app": "firefox", "summary": "Download Complete", "body": "myfile.zip done", "timestamp": 1703577600, "level": 1},
		{"app_name": "slack", "summary": "New Message", "urgency": 2}
	]`

	adapter := NewStdinAdapterWithReader(strings.NewReader(input))
	records, err := adapter.Import(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	r1 := records[0]
	assert.Equal(t, "firefox", r1.App)
	assert.Equal(t, "Download Complete", r1.Summary)
	assert.Equal(t, "myfile.zip done", r1.Body)
	assert.Equal(t, int64(1703577600), r1.Timestamp)
	assert.Equal(t, history.LevelNormal, r1.Level)
	assert.Equal(t, "stdin", r1.Source)
	assert.Len(t, r1.ID, 26)

	// Alternate keys: app_name and urgency
	r2 := records[1]
	assert.Equal(t, "slack", r2.App)
	assert.Equal(t, history.LevelCritical, r2.Level)
	assert.Greater(t, r2.Timestamp, int64(0))
}

func TestStdinAdapter_Import_JSONLines(t *testing.T) {
	input := `{"app": "mail", "summary": "New Mail", "level": 0}
not valid json
{"app": "chat", "body": "missing summary"}
{"app": "calendar", "summary": "Meeting in 5", "level": 2}`

	adapter := NewStdinAdapterWithReader(strings.NewReader(input))
	records, err := adapter.Import(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "mail", records[0].App)
	assert.Equal(t, history.LevelLow, records[0].Level)
	assert.Equal(t, "calendar", records[1].App)
	assert.Equal(t, history.LevelCritical, records[1].Level)
}

func TestStdinAdapter_Import_DunstFormat(t *testing.T) {
	input := `{
		"type": "array",
		"data": [[
			{
				"id": {"type": "INT", "data": 1},
				"appname": {"type": "STRING", "data": "firefox"},
				"summary": {"type": "STRING", "data": "Piped from dunstctl"},
				"body": {"type": "STRING", "data": ""},
				"timestamp": {"type": "INT", "data": 1703577600000000},
				"timeout": {"type": "INT", "data": 0},
				"urgency": {"type": "INT", "data": 1},
				"icon_path": {"type": "STRING", "data": ""}
			}
		]]
	}`

	adapter := NewStdinAdapterWithReader(strings.NewReader(input))
	records, err := adapter.Import(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "firefox", records[0].App)
	assert.Equal(t, "Piped from dunstctl", records[0].Summary)
	assert.Equal(t, "dunst", records[0].Source)
}

func TestStdinAdapter_Import_Empty(t *testing.T) {
	adapter := NewStdinAdapterWithReader(strings.NewReader(""))
	records, err := adapter.Import(context.Background())
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestStdinAdapter_Import_Garbage(t *testing.T) {
	adapter := NewStdinAdapterWithReader(strings.NewReader("this is not json at all"))
	_, err := adapter.Import(context.Background())
	require.Error(t, err)

	var adapterErr *AdapterError
	assert.ErrorAs(t, err, &adapterErr)
	assert.Equal(t, "stdin", adapterErr.Source)
}

func TestNewAdapter(t *testing.T) {
	t.Run("stdin", func(t *testing.T) {
		adapter, err := NewAdapter("stdin")
		require.NoError(t, err)
		assert.Equal(t, "stdin", adapter.Name())
	})

	t.Run("dunst", func(t *testing.T) {
		adapter, err := NewAdapter("dunst")
		require.NoError(t, err)
		assert.Equal(t, "dunst", adapter.Name())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewAdapter("growl")
		require.Error(t, err)

		var adapterErr *AdapterError
		require.ErrorAs(t, err, &adapterErr)
		assert.Equal(t, "growl", adapterErr.Source)
	})
}
