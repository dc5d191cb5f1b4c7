package theme

import (
	"image/color"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Theme centralizes Lip Gloss styles for the Bubble Tea UI.
type Theme struct {
	Footer FooterTheme
	Panel  PanelTheme
	Grid   GridTheme
	Modal  ModalTheme
}

// FooterTheme groups styles used by the bottom status bar.
type FooterTheme struct {
	Help    lipgloss.Style
	Status  lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Key     lipgloss.Style
}

// PanelTheme styles framed panels and headings.
type PanelTheme struct {
	Frame  lipgloss.Style
	Title  lipgloss.Style
	Body   lipgloss.Style
	Label  lipgloss.Style
	Muted  lipgloss.Style
	Accent lipgloss.Style
}

// GridTheme colors the dots of the life grid. Hovered dots are blended from
// their base color toward Highlight by their proximity weight.
type GridTheme struct {
	Lived     colorful.Color
	Current   colorful.Color
	Future    colorful.Color
	Birthday  colorful.Color
	Written   colorful.Color
	Highlight colorful.Color

	Label  lipgloss.Style
	Cursor lipgloss.Style
}

// ModalTheme styles centered modal overlays such as onboarding.
type ModalTheme struct {
	Frame lipgloss.Style
	Title lipgloss.Style
	Body  lipgloss.Style
}

// Default returns the built-in theme used across the UI.
func Default() Theme {
	return Theme{
		Footer: FooterTheme{
			Help:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
			Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
			Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
			Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
			Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
		},
		Panel: PanelTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(0, 1),
			Title:  lipgloss.NewStyle().Bold(true),
			Body:   lipgloss.NewStyle(),
			Label:  lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true),
			Muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true),
			Accent: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		},
		Grid: GridTheme{
			Lived:     mustHex("#8a8f98"),
			Current:   mustHex("#ff5f87"),
			Future:    mustHex("#3a3f4b"),
			Birthday:  mustHex("#ffd75f"),
			Written:   mustHex("#5fd7af"),
			Highlight: mustHex("#ffffff"),
			Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			Cursor:    lipgloss.NewStyle().Reverse(true),
		},
		Modal: ModalTheme{
			Frame: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				Padding(1, 2),
			Title: lipgloss.NewStyle().Bold(true),
			Body:  lipgloss.NewStyle(),
		},
	}
}

// Light returns Default adjusted for terminals with a light background.
func Light() Theme {
	t := Default()
	t.Footer.Help = t.Footer.Help.Foreground(lipgloss.Color("240"))
	t.Footer.Status = t.Footer.Status.Foreground(lipgloss.Color("238"))
	t.Footer.Success = t.Footer.Success.Foreground(lipgloss.Color("28"))
	t.Footer.Error = t.Footer.Error.Foreground(lipgloss.Color("160"))
	t.Footer.Key = t.Footer.Key.Foreground(lipgloss.Color("162"))
	t.Panel.Label = t.Panel.Label.Foreground(lipgloss.Color("162"))
	t.Panel.Muted = t.Panel.Muted.Foreground(lipgloss.Color("244"))
	t.Panel.Accent = t.Panel.Accent.Foreground(lipgloss.Color("130"))
	t.Grid.Lived = mustHex("#4e5461")
	t.Grid.Current = mustHex("#d7005f")
	t.Grid.Future = mustHex("#c6cad2")
	t.Grid.Birthday = mustHex("#d78700")
	t.Grid.Written = mustHex("#00875f")
	t.Grid.Highlight = mustHex("#000000")
	t.Grid.Label = t.Grid.Label.Foreground(lipgloss.Color("244"))
	return t
}

// ForBackground picks Default or Light.
func ForBackground(dark bool) Theme {
	if dark {
		return Default()
	}
	return Light()
}

// Emphasize blends base toward the highlight color. weight is the proximity
// weight of a dot, 1.0 far from the pointer and 1.5 under it.
func (g GridTheme) Emphasize(base colorful.Color, weight float64) color.Color {
	t := (weight - 1) * 2
	switch {
	case t <= 0:
		return lipgloss.Color(base.Hex())
	case t > 1:
		t = 1
	}
	return lipgloss.Color(base.BlendLab(g.Highlight, t*0.6).Clamped().Hex())
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
