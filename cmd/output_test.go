package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkarpinos/linkvault/internal/link"
)

func TestAsk(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got := ask(strings.NewReader(tt.input), &out, "Continue?")
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Continue? [y/N]: ")
	}
}

func TestApplySetting(t *testing.T) {
	s := link.DefaultSettings()

	require.NoError(t, applySetting(&s, "dark-mode", "true"))
	require.NoError(t, applySetting(&s, "language", "en"))
	require.NoError(t, applySetting(&s, "view_layout", "compact"))
	require.NoError(t, applySetting(&s, "current_view", "folder:Work"))

	assert.True(t, s.DarkMode)
	assert.Equal(t, link.English, s.Language)
	assert.Equal(t, link.LayoutCompact, s.ViewLayout)
	assert.Equal(t, "folder:Work", s.CurrentView)
	assert.NoError(t, s.Validate())

	assert.Error(t, applySetting(&s, "dark_mode", "sometimes"))
	assert.Error(t, applySetting(&s, "font", "serif"))
}

func TestPrintLinkShowsOriginalFolderInTrash(t *testing.T) {
	var out bytes.Buffer
	printLink(&out, link.Link{
		ID:        "abc",
		Title:     "Go",
		URL:       "https://go.dev",
		Folder:    link.Personal,
		IsDeleted: true,
	})

	assert.Contains(t, out.String(), "Deleted from: "+link.Personal)
	assert.NotContains(t, out.String(), "Folder:")
}
