package output

import (
	"fmt"
)

// FormatTokens renders a token count the way the report shows it:
// 1234 → "1.2K", 2500000 → "2.50M".
func FormatTokens(n int64) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.2fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	}
	return fmt.Sprintf("%d", n)
}

// sourcePalette assigns stable colors to sources in first-appearance
// order, wrapping when there are more sources than colors.
var sourcePalette = []string{
	"#ff6b35",
	"#4ecdc4",
	"#a855f7",
	"#22c55e",
	"#f43f5e",
	"#3b82f6",
	"#eab308",
	"#ec4899",
}

// SourceColor returns the palette color for the i-th source.
func SourceColor(i int) string {
	if i < 0 {
		i = 0
	}
	return sourcePalette[i%len(sourcePalette)]
}
