package theme

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatppuccinMocha_ColorPalette(t *testing.T) {
	th := NewCatppuccinMocha()

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"Primary (Mauve)", th.Primary, "#cba6f7"},
		{"Secondary (Blue)", th.Secondary, "#89b4fa"},
		{"Tertiary (Lavender)", th.Tertiary, "#b4befe"},
		{"BgCrust", th.BgCrust, "#11111b"},
		{"BgBase", th.BgBase, "#1e1e2e"},
		{"BgSurface0", th.BgSurface0, "#313244"},
		{"FgMuted (Subtext0)", th.FgMuted, "#a6adc8"},
		{"FgBase (Text)", th.FgBase, "#cdd6f4"},
		{"Warning (Yellow)", th.Warning, "#f9e2af"},
		{"Error (Red)", th.Error, "#f38ba8"},
		{"BorderFocused (Mauve)", th.BorderFocused, "#cba6f7"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.got, tt.name)
	}
}

func TestCurrent_DefaultAndSet(t *testing.T) {
	orig := Current()
	t.Cleanup(func() { SetCurrent(orig) })

	require.Equal(t, "catppuccin-mocha", orig.Name)

	custom := NewCatppuccinMocha()
	custom.Name = "custom"
	SetCurrent(custom)
	assert.Equal(t, "custom", Current().Name)

	SetCurrent(nil)
	assert.Equal(t, "custom", Current().Name, "nil theme is ignored")
}

func TestStyles_Lazy(t *testing.T) {
	th := NewCatppuccinMocha()
	s1 := th.S()
	s2 := th.S()
	assert.Same(t, s1, s2)
	assert.True(t, s1.HeaderTitle.GetBold())
}

func TestGradient(t *testing.T) {
	assert.Nil(t, Gradient("#000000", "#ffffff", 0))
	assert.Equal(t, []color.Color{color.RGBA{R: 0xcb, G: 0xa6, B: 0xf7, A: 0xff}}, Gradient("#cba6f7", "#ffffff", 1))

	g := Gradient("#000000", "#ffffff", 3)
	require.Len(t, g, 3)
	assert.Equal(t, color.RGBA{A: 0xff}, g[0])
	assert.Equal(t, color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}, g[1])
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, g[2])
}

func TestGradient_MalformedIsBlack(t *testing.T) {
	g := Gradient("bad", "#zzzzzz", 2)
	assert.Equal(t, []color.Color{color.RGBA{A: 0xff}, color.RGBA{A: 0xff}}, g)
}

func TestHints(t *testing.T) {
	out := Hints("enter", "select", "esc", "back")
	assert.Contains(t, out, "enter")
	assert.Contains(t, out, "•")
	assert.Contains(t, out, "back")
	assert.Empty(t, Hints("dangling"))
	assert.Empty(t, Hints())
}

func TestNewInput(t *testing.T) {
	in := NewInput("Search", 30)
	assert.Equal(t, "Search", in.Placeholder)
	assert.Empty(t, in.Prompt)
	assert.Equal(t, 30, in.Width())
}
