package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Duration
		wantErr bool
	}{
		{"48h", 48 * time.Hour, false},
		{"30m", 30 * time.Minute, false},
		{"7d", 7 * 24 * time.Hour, false},
		{"1w", 7 * 24 * time.Hour, false},
		{"2w", 14 * 24 * time.Hour, false},
		{"0", 0, false},
		{"", 0, false},
		{"  24h  ", 24 * time.Hour, false},
		{"xd", 0, true},
		{"garbage", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDuration(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"low", LevelLow, false},
		{"normal", LevelNormal, false},
		{"critical", LevelCritical, false},
		{"0", LevelLow, false},
		{"1", LevelNormal, false},
		{"2", LevelCritical, false},
		{"CRITICAL", LevelCritical, false},
		{"  Normal ", LevelNormal, false},
		{"urgent", 0, true},
		{"3", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		input     string
		wantField string
		wantOrder string
		wantErr   bool
	}{
		{"", "timestamp", "desc", false},
		{"timestamp", "timestamp", "desc", false},
		{"timestamp:asc", "timestamp", "asc", false},
		{"time:desc", "timestamp", "desc", false},
		{"app", "app", "desc", false},
		{"appname:asc", "app", "asc", false},
		{"level", "level", "desc", false},
		{"urgency:desc", "level", "desc", false},
		{"bogus", "", "", true},
		{"app:sideways", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			field, order, err := ParseSort(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantField, field)
			assert.Equal(t, tt.wantOrder, order)
		})
	}
}
