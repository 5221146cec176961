package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardenhq/warden/pkg/types"
)

func TestParseCallback(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    callbackCommand
		wantErr bool
	}{
		{"status", "status", callbackCommand{kind: cbStatus}, false},
		{"peers", "peers", callbackCommand{kind: cbPeers}, false},
		{"speedtest", "speedtest", callbackCommand{kind: cbSpeedtest}, false},
		{"graph", "graph_3", callbackCommand{kind: cbGraph, hours: 3}, false},
		{"graph large window", "graph_24", callbackCommand{kind: cbGraph, hours: 24}, false},
		{"approve", "approve_17", callbackCommand{kind: cbApprove, requestID: 17}, false},
		{"reject", "reject_4", callbackCommand{kind: cbReject, requestID: 4}, false},

		{"empty", "", callbackCommand{}, true},
		{"unknown token", "reboot", callbackCommand{}, true},
		{"graph non-numeric", "graph_abc", callbackCommand{}, true},
		{"graph zero hours", "graph_0", callbackCommand{}, true},
		{"graph negative", "graph_-1", callbackCommand{}, true},
		{"approve missing id", "approve_", callbackCommand{}, true},
		{"approve negative id", "approve_-2", callbackCommand{}, true},
		{"near miss prefix", "approve17", callbackCommand{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCallback(tt.data)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHumanBytesPerSec(t *testing.T) {
	tests := []struct {
		bps      float64
		expected string
	}{
		{0, "0 B/s"},
		{512, "512 B/s"},
		{2048, "2.0 KB/s"},
		{3 * 1024 * 1024, "3.00 MB/s"},
		{5 * 1024 * 1024 * 1024, "5.00 GB/s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, humanBytesPerSec(tt.bps))
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{5 * time.Minute, "5m"},
		{90 * time.Minute, "1h 30m"},
		{26*time.Hour + 12*time.Minute, "1d 2h 12m"},
		{30 * time.Second, "1m"}, // rounded
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatUptime(tt.d))
	}
}

func TestChoiceKeyboardLayout(t *testing.T) {
	choices := []types.Choice{
		{Label: "a", Token: "1"},
		{Label: "b", Token: "2"},
		{Label: "c", Token: "3"},
	}

	kb := choiceKeyboard(choices)
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Len(t, kb.InlineKeyboard[0], 2)
	assert.Len(t, kb.InlineKeyboard[1], 1)
	assert.Equal(t, "1", *kb.InlineKeyboard[0][0].CallbackData)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}
