package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"empty state", nil, "/"},
		{"search and category", []string{"--q", "main library", "--category", "library"}, "/?category=library&q=main+library"},
		{"category case folded", []string{"--category", "Dining"}, "/?category=dining"},
		{"facility on directory tab", []string{"--facility", "gym", "--tab", "directory"}, "/directory?facility=gym"},
		{"explicit path", []string{"--path", "/chat", "--q", "help"}, "/chat?q=help"},
		{"whitespace trimmed", []string{"--q", "  gym  "}, "/?q=gym"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := execute(t, append([]string{"encode"}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, strings.TrimSpace(stdout))
		})
	}
}

func TestEncodeCommand_UnknownCategoryWarns(t *testing.T) {
	stdout, stderr, err := execute(t, "encode", "--category", "bogus", "--q", "lab")
	require.NoError(t, err)
	assert.Equal(t, "/?q=lab", strings.TrimSpace(stdout))
	assert.Contains(t, stderr, `dropping unknown category "bogus"`)
}

func TestEncodeCommand_UnknownTab(t *testing.T) {
	_, _, err := execute(t, "encode", "--tab", "settings")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `unknown tab "settings"`)
}

func TestEncodeCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "encode", "--facility", "lib", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   EncodeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "/?facility=lib", resp.Data.URL)
}
