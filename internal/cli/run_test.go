package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forPelevin/vidlyze/internal/types"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := newLogger(&buf, "debug", "json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
	log.WithField("stage", "x").Debug("hello")
	assert.Contains(t, buf.String(), `"stage":"x"`)

	_, err = newLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.EqualError(t, err, `config: unknown log format "xml"`)
}

func TestSplitHosts(t *testing.T) {
	assert.Nil(t, splitHosts(""))
	assert.Equal(t, []string{"proxy.internal", "api.openai.com"}, splitHosts(" proxy.internal , ,api.openai.com"))
}

func TestPrintReport(t *testing.T) {
	var buf bytes.Buffer
	printReport(&buf, types.Report{
		Status: "Issues detected",
		Findings: []types.Finding{
			{Kind: types.KindPause, Timestamp: "00:03", Description: "Unusual pause of 2.5 seconds", Emoji: "⏸️"},
		},
	})
	assert.Equal(t, "Issues detected\n⏸️ 00:03 Pause: Unusual pause of 2.5 seconds\n", buf.String())
}

func TestRootCmd_ConfigErrors(t *testing.T) {
	in := filepath.Join(t.TempDir(), "clip.mov")
	require.NoError(t, os.WriteFile(in, []byte("x"), 0o644))

	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{name: "no args", args: []string{}, want: "accepts 1 arg(s), received 0"},
		{name: "missing key", args: []string{in}, env: map[string]string{"OPENAI_API_KEY": ""}, want: "OPENAI_API_KEY is required"},
		{
			name: "http base url",
			args: []string{in},
			env:  map[string]string{"OPENAI_API_KEY": "dummy", "OPENAI_BASE_URL": "http://api.openai.com/v1"},
			want: "https is required",
		},
		{
			name: "missing dictionary",
			args: []string{in, "--dictionary", filepath.Join(t.TempDir(), "none.json")},
			env:  map[string]string{"OPENAI_API_KEY": "dummy"},
			want: "config: ",
		},
		{name: "bad log level", args: []string{in, "--log-level", "loud"}, want: "config: "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OPENAI_BASE_URL", "")
			t.Setenv("OPENAI_ALLOWED_HOSTS", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cmd := newRootCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)
			cmd.SetArgs(tc.args)
			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
