package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsageCommands(t *testing.T) {
	t.Setenv("RECORD_STORE", "memory")
	t.Setenv("DAILY_LIMIT", "20")
	t.Setenv("TIMEZONE", "UTC")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	rootCmd.SetArgs([]string{"usage"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Used:      0/20 (0%)")
	assert.Contains(t, out.String(), "Remaining: 20")

	out.Reset()
	rootCmd.SetArgs([]string{"reset-usage"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Usage counter reset.")
}

func TestResetUsageHelpNamesServerEndpoint(t *testing.T) {
	assert.Contains(t, resetUsageCmd.Long, "POST /v1/usage/reset")
}

func TestInvalidRecordStore(t *testing.T) {
	t.Setenv("RECORD_STORE", "bogus")

	rootCmd.SetArgs([]string{"usage"})
	rootCmd.SilenceUsage = true
	t.Cleanup(func() { rootCmd.SilenceUsage = false })

	assert.Error(t, rootCmd.Execute())
}

func TestFormatServerMessage(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []string
	}{
		{"thinking", `{"type":"state","state":"thinking"}`, []string{"..."}},
		{
			"reply",
			`{"type":"assistant_reply","stage":"gather_details","reply":{"message":"Thanks Ravi.","nextQuestion":"What is your address?","isComplete":false}}`,
			[]string{"assistant [gather_details]:", "Thanks Ravi.", "What is your address?"},
		},
		{
			"quota",
			`{"type":"error","code":"quota_exceeded","message":"quota exceeded","usage":{"type":"error","message":"Use the manual form.","show_fallback":true}}`,
			[]string{"error (quota_exceeded):", "quota exceeded", "Use the manual form."},
		},
		{"ready", `{"type":"rti_ready","document":"FORM A"}`, []string{"FORM A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := formatServerMessage([]byte(tt.data))
			for _, want := range tt.want {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestFormatServerMessageSkipsNoise(t *testing.T) {
	assert.Empty(t, formatServerMessage([]byte(`{"type":"state","state":"idle"}`)))
	assert.Empty(t, formatServerMessage([]byte(`not json`)))
	assert.Empty(t, formatServerMessage([]byte(`{"type":"hello_ack"}`)))
}
