package theme

import (
	"maps"
	"os"
	"runtime"

	"github.com/charmbracelet/lipgloss"
)

// IconSet maps semantic names to the glyph drawn for them.
type IconSet map[string]string

// Colors is the palette shared by every view.
type Colors struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Background lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// Theme bundles the palette, the panel border and the icons.
type Theme struct {
	colors   Colors
	border   lipgloss.Border
	icons    IconSet
	fallback IconSet
}

// Option configures a Theme during construction.
type Option func(*Theme)

// WithIconSet replaces the icon set.
func WithIconSet(set IconSet) Option {
	return func(t *Theme) { t.icons = maps.Clone(set) }
}

// WithColors replaces the palette.
func WithColors(colors Colors) Option {
	return func(t *Theme) { t.colors = colors }
}

// New constructs a Theme with opts applied over the defaults.
func New(opts ...Option) Theme {
	t := Theme{
		colors: Colors{
			Primary:    lipgloss.Color("#5b4b8a"),
			Secondary:  lipgloss.Color("#7c6bb0"),
			Accent:     lipgloss.Color("#f29fbb"),
			Background: lipgloss.Color("#fafafa"),
			Muted:      lipgloss.Color("#9ba8c0"),
			Success:    lipgloss.Color("#5dc796"),
			Warning:    lipgloss.Color("#f0b44c"),
			Error:      lipgloss.Color("#f04c56"),
		},
		border:   lipgloss.RoundedBorder(),
		icons:    defaultIconSet(),
		fallback: maps.Clone(asciiIcons),
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.icons == nil {
		t.icons = defaultIconSet()
	}
	return t
}

// Default returns the default theme.
func Default() Theme { return New() }

func (t Theme) Colors() Colors { return t.colors }

// Icon returns the named icon, the ASCII fallback, or "".
func (t Theme) Icon(name string) string {
	if icon, ok := t.icons[name]; ok {
		return icon
	}
	return t.fallback[name]
}

// HeaderStyle is used for the title bar.
func (t Theme) HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Bold(true).
		Background(t.colors.Primary).
		Foreground(t.colors.Background).
		Align(lipgloss.Center)
}

// StatusBarStyle is used for the footer.
func (t Theme) StatusBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Background(t.colors.Secondary).
		Foreground(t.colors.Background).
		Padding(0, 1)
}

// PanelStyle is the bordered container around counters.
func (t Theme) PanelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(t.border).
		BorderForeground(t.colors.Accent).
		Padding(0, 1)
}

// WarningStyle renders scan warnings.
func (t Theme) WarningStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.colors.Warning)
}

// ErrorStyle renders fatal errors.
func (t Theme) ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(t.colors.Error)
}

// ProgressGradient returns the two colors of the progress bar gradient.
func (t Theme) ProgressGradient() (string, string) {
	return string(t.colors.Primary), string(t.colors.Accent)
}

func defaultIconSet() IconSet {
	if isLimitedTerminal() {
		return maps.Clone(asciiIcons)
	}
	return maps.Clone(emojiIcons)
}

// isLimitedTerminal reports sessions where emoji tend to render badly.
func isLimitedTerminal() bool {
	if os.Getenv("SSH_CLIENT") != "" || os.Getenv("SSH_TTY") != "" || os.Getenv("SSH_CONNECTION") != "" {
		return true
	}
	return runtime.GOOS == "windows"
}

var emojiIcons = IconSet{
	"show":    "📺",
	"season":  "📁",
	"episode": "🎬",
	"folder":  "📂",
	"link":    "🔗",
	"scan":    "🔍",
	"stats":   "📊",
	"success": "✅",
	"warning": "⚠️",
	"error":   "❌",
}

var asciiIcons = IconSet{
	"show":    "[TV]",
	"season":  "[S]",
	"episode": "[E]",
	"folder":  "[D]",
	"link":    "[->]",
	"scan":    "[?]",
	"stats":   "[*]",
	"success": "[v]",
	"warning": "[!]",
	"error":   "[x]",
}
