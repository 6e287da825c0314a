package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"notlikethat/internal/models"
	"notlikethat/internal/services"
	contextutils "notlikethat/internal/utils"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const (
	defaultWidth     = 80
	maxWidth         = 100
	progressBarWidth = 20
)

// Color palette for the two persisted themes
var (
	LightForeground = lipgloss.Color("#101F38")
	LightPrimary    = lipgloss.Color("#101F38")
	LightAccent     = lipgloss.Color("#558B2F")
	LightMuted      = lipgloss.Color("#6b7280")
	LightBorder     = lipgloss.Color("#dce0e5")

	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#8BC34A")
	DarkAccent     = lipgloss.Color("#FFC107")
	DarkMuted      = lipgloss.Color("#9aa5b8")
	DarkBorder     = lipgloss.Color("#2a3850")
)

// Palette holds the colors of one theme
type Palette struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
}

// PaletteFor returns the palette of a persisted theme
func PaletteFor(theme models.Theme) Palette {
	if theme == models.ThemeDark {
		return Palette{
			Foreground: DarkForeground,
			Primary:    DarkPrimary,
			Accent:     DarkAccent,
			Muted:      DarkMuted,
			Border:     DarkBorder,
		}
	}
	return Palette{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
	}
}

type styles struct {
	title lipgloss.Style
	body  lipgloss.Style
	muted lipgloss.Style
	badge lipgloss.Style
	card  lipgloss.Style
}

func newStyles(r *lipgloss.Renderer, p Palette, width int) styles {
	return styles{
		title: r.NewStyle().Bold(true).Foreground(p.Primary),
		body:  r.NewStyle().Foreground(p.Foreground).Width(width),
		muted: r.NewStyle().Foreground(p.Muted),
		badge: r.NewStyle().Bold(true).Foreground(p.Accent),
		card: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
	}
}

// Renderer prints the widget to a terminal in the active language and theme
type Renderer struct {
	out    io.Writer
	text   contextutils.UIText
	locale contextutils.Locale
	clamp  int
	full   bool
	width  int
	isTTY  bool
	styles styles
}

// NewRenderer creates a renderer for out. Colors are only emitted when out is a terminal.
func NewRenderer(out io.Writer, theme models.Theme, locale contextutils.Locale, clamp int, full bool) *Renderer {
	width, isTTY := terminalWidth(out)
	r := lipgloss.NewRenderer(out)
	return &Renderer{
		out:    out,
		text:   contextutils.GetUIText(locale),
		locale: locale,
		clamp:  clamp,
		full:   full,
		width:  width,
		isTTY:  isTTY,
		styles: newStyles(r, PaletteFor(theme), width-4),
	}
}

// terminalWidth reports the usable width of out and whether it is a terminal
func terminalWidth(out io.Writer) (int, bool) {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return defaultWidth, false
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth, true
	}
	if width > maxWidth {
		width = maxWidth
	}
	return width, true
}

// ClampText shortens text to limit characters unless full is set.
// The second result reports whether anything was cut.
func ClampText(text string, limit int, full bool) (string, bool) {
	if full || limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text, false
	}
	return strings.TrimRight(services.TruncateRunes(text, limit), " ") + "...", true
}

// ProgressBar draws percent as a fixed-width bar
func ProgressBar(percent int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressBarWidth / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
}

func (r *Renderer) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// ItemBlock renders the item card without the footer
func (r *Renderer) ItemBlock(item models.MisconceptionItem) string {
	text, clamped := ClampText(item.Text, r.clamp, r.full)

	var b strings.Builder
	header := fmt.Sprintf("#%d", item.ID)
	if item.Category != "" {
		header += " · " + item.Category
	}
	b.WriteString(r.styles.muted.Render(header))
	b.WriteString("\n\n")
	b.WriteString(r.styles.body.Render(text))
	if clamped {
		b.WriteString("\n")
		b.WriteString(r.styles.muted.Render(r.text.ReadMore + " (--full)"))
	}
	if item.SourceURL != "" {
		b.WriteString("\n\n")
		b.WriteString(r.styles.muted.Render(r.text.SourceLabel + ": " + item.SourceURL))
	}
	return r.styles.card.Render(b.String())
}

// Visit prints the full widget for one visit
func (r *Renderer) Visit(visit *services.Visit, untilMidnight time.Duration) {
	r.printf("%s\n", r.styles.title.Render(r.text.Logo))
	r.printf("%s\n", r.ItemBlock(visit.Item))
	if streak := contextutils.FormatStreak(r.locale, visit.Streak); streak != "" {
		r.printf("%s\n", r.styles.badge.Render(streak))
	}
	r.Progress(visit.Progress)
	r.Countdown(untilMidnight)
}

// Streak prints the streak badge and the longest streak
func (r *Renderer) Streak(record models.StreakRecord) {
	if streak := contextutils.FormatStreak(r.locale, record.CurrentStreak); streak != "" {
		r.printf("%s\n", r.styles.badge.Render(streak))
	}
	r.printf("%s\n", r.styles.muted.Render(fmt.Sprintf("current=%d longest=%d last_visit=%s",
		record.CurrentStreak, record.LongestStreak, record.LastVisit)))
}

// Progress prints the share of the list already shown
func (r *Renderer) Progress(p models.Progress) {
	r.printf("%s %3d%% (%d/%d)\n", ProgressBar(p.Percent), p.Percent, p.Shown, p.Total)
}

// Countdown prints the time left until the next item
func (r *Renderer) Countdown(d time.Duration) {
	r.printf("%s %s\n", r.styles.muted.Render(r.text.CountdownLabel), contextutils.FormatCountdown(d))
}

// CountdownInPlace redraws the countdown on the current line when out is a terminal
func (r *Renderer) CountdownInPlace(d time.Duration) {
	if !r.isTTY {
		return
	}
	r.printf("\r%s %s", r.styles.muted.Render(r.text.CountdownLabel), contextutils.FormatCountdown(d))
}

// Share prints one share link per network
func (r *Renderer) Share(links []services.ShareLink) {
	r.printf("%s\n", r.styles.title.Render(r.text.ShareTitle))
	for _, link := range links {
		r.printf("  %-9s %s\n", link.Network, link.URL)
	}
}

// Theme prints the active theme
func (r *Renderer) Theme(theme models.Theme) {
	r.printf("%s\n", r.styles.badge.Render(string(theme)))
}
