// Package format renders snapshot values for humans.
package format

import "fmt"

// ElapsedTime renders seconds as HH:MM:SS. Hours are not wrapped at 24.
func ElapsedTime(seconds uint64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// KiB renders a size given in KiB with a binary unit.
func KiB(kb uint64) string {
	switch {
	case kb >= 1<<20:
		return fmt.Sprintf("%.1fG", float64(kb)/(1<<20))
	case kb >= 1<<10:
		return fmt.Sprintf("%.1fM", float64(kb)/(1<<10))
	default:
		return fmt.Sprintf("%dK", kb)
	}
}

// Percent renders a [0,1] fraction as a percentage.
func Percent(frac float64) string { return fmt.Sprintf("%5.1f%%", frac*100) }
