package helpers

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
	"github.com/shopspring/decimal"
)

// NoValue is shown in place of balances that are unknown or unparsable.
const NoValue = "--"

// FormatAddress keeps the first start and last end characters of an address,
// joined by "...". Strings that already fit are returned unchanged.
func FormatAddress(addr string, start, end int) string {
	if start < 0 || end < 0 || len(addr) <= start+end {
		return addr
	}
	return addr[:start] + "..." + addr[len(addr)-end:]
}

// ShortenAddr is FormatAddress with the 4/4 split used across the UI.
func ShortenAddr(addr string) string {
	if addr == "" {
		return "N/A"
	}
	return FormatAddress(addr, 4, 4)
}

// FormatBalance renders a decimal string with thousands separators and
// between minFrac and maxFrac fraction digits, rounding half away from zero.
func FormatBalance(amount string, minFrac, maxFrac int) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return NoValue
	}
	if maxFrac < minFrac {
		maxFrac = minFrac
	}

	d = d.Round(int32(maxFrac))
	sign := ""
	if d.Sign() < 0 {
		sign = "-"
		d = d.Abs()
	}

	fixed := d.StringFixed(int32(maxFrac))
	intPart, frac, _ := strings.Cut(fixed, ".")
	for len(frac) > minFrac && strings.HasSuffix(frac, "0") {
		frac = frac[:len(frac)-1]
	}

	whole := intPart
	if n, err := decimal.NewFromString(intPart); err == nil && n.LessThan(decimal.New(1, 18)) {
		whole = humanize.Comma(n.IntPart())
	}
	if frac == "" {
		return sign + whole
	}
	return sign + whole + "." + frac
}

// FormatXLM formats a native balance the way the balance card shows it.
func FormatXLM(amount string) string {
	return FormatBalance(amount, 2, 7) + " XLM"
}

// FormatNavbarBalance is the compact two-decimal form used in the header.
func FormatNavbarBalance(amount string) string {
	if strings.TrimSpace(amount) == "" {
		return NoValue
	}
	return FormatBalance(amount, 2, 2)
}

// FormatRelative describes t relative to now: "Just now", "5m ago", "3h ago",
// "2d ago", then a calendar date (with the year only when it differs).
func FormatRelative(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	}

	local := t.In(now.Location())
	if local.Year() != now.Year() {
		return local.Format("Jan 2, 2006")
	}
	return local.Format("Jan 2")
}

// LoadedAt formats the loaded timestamp
func LoadedAt(t time.Time, loading bool) string {
	if loading {
		return "loading…"
	}
	if t.IsZero() {
		return "never"
	}
	return t.Format("15:04:05")
}

// FadeString creates a gradient colored string
func FadeString(s string, firstColor string, lastColor string) string {
	if s == "" {
		return s
	}
	blends := gamut.Blends(lipgloss.Color(firstColor), lipgloss.Color(lastColor), len([]rune(s)))
	return rainbow(lipgloss.NewStyle(), s, blends)
}

func rainbow(baseStyle lipgloss.Style, str string, colors []color.Color) string {
	var b strings.Builder
	i := 0
	for _, c := range str {
		col, _ := colorful.MakeColor(colors[i%len(colors)])
		b.WriteString(baseStyle.Foreground(lipgloss.Color(col.Hex())).Render(string(c)))
		i++
	}
	return b.String()
}

// Max returns the maximum of two integers
func Max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Min returns the minimum of two integers
func Min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
