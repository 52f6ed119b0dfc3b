package theme

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStyleFallback(t *testing.T) {
	th := &Theme{Name: "t", Styles: map[string]tcell.Style{
		StyleDefault:   tcell.StyleDefault.Foreground(tcell.ColorWhite),
		StyleStatusBar: tcell.StyleDefault.Foreground(tcell.ColorBlue),
	}}
	assert.Equal(t, th.Styles[StyleStatusBar], th.GetStyle(StyleStatusBarWarning))
	assert.Equal(t, th.Styles[StyleDefault], th.GetStyle(StyleCell))

	empty := &Theme{Name: "empty", Styles: map[string]tcell.Style{}}
	assert.Equal(t, tcell.StyleDefault, empty.GetStyle(StyleCell))
}

func TestParseColorString(t *testing.T) {
	tests := []struct {
		in      string
		want    tcell.Color
		wantErr bool
	}{
		{in: "#ff0000", want: tcell.NewHexColor(0xff0000)},
		{in: " Reset ", want: tcell.ColorReset},
		{in: "default", want: tcell.ColorDefault},
		{in: "green", want: tcell.ColorGreen},
		{in: "#fff", wantErr: true},
		{in: "#gggggg", wantErr: true},
		{in: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseColorString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

const solarTheme = `
name = "Solar"
is_dark = true

[styles.Default]
fg = "#839496"
bg = "#002b36"

[styles.Cell]
fg = "#b58900"
bold = true

[styles.Cursor]
fg = "oops"
`

func TestLoadThemeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solar.toml")
	require.NoError(t, os.WriteFile(path, []byte(solarTheme), 0o644))

	th, err := LoadThemeFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Solar", th.Name)
	assert.True(t, th.IsDark)

	fg, bg, attrs := th.GetStyle(StyleCell).Decompose()
	assert.Equal(t, tcell.NewHexColor(0xb58900), fg)
	assert.Equal(t, tcell.NewHexColor(0x002b36), bg)
	assert.NotZero(t, attrs&tcell.AttrBold)

	_, ok := th.Styles[StyleCursor]
	assert.False(t, ok)
}

func TestManagerLoadsDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "solar.toml"), []byte(solarTheme), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain.toml"), []byte("[styles.Cell]\nfg = \"red\"\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("name = "), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	m := NewManager(dir)
	assert.Equal(t, []string{"Cellundo Dark", "Cellundo Light", "Solar", "plain"}, m.ListThemes())
	assert.Equal(t, Dark.Name, m.Current().Name)

	require.NoError(t, m.SetTheme("SOLAR"))
	assert.Equal(t, "Solar", m.Current().Name)
	assert.Error(t, m.SetTheme("missing"))
	assert.Equal(t, "Solar", m.Current().Name)
}

func TestManagerMissingDirectory(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent"))
	assert.Len(t, m.ListThemes(), 2)
}
