package outwriter

import (
	"os"

	"github.com/petrabarus/actions-committer-coverage-stats/internal/contract"
	"golang.org/x/term"
)

// Bounds of the contributor column in the text table.
const (
	minKeyWidth     = 15
	maxKeyWidth     = 60
	defaultTermSize = 80 // Conservative default for narrow terminals and CI
)

// terminalWidth returns the configured width, the detected terminal width, or a default.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return defaultTermSize
}

// GetMaxTableKeyWidth returns how wide the contributor column of the text table may be.
func GetMaxTableKeyWidth(cfg *contract.Config) int {
	// Rank, Lines, Covered, % Covered and Status with borders and padding
	baseWidth := 55
	if cfg.ResolveUsers {
		baseWidth += 20 // User column
	}

	available := terminalWidth(cfg) - baseWidth
	if available < minKeyWidth {
		return minKeyWidth
	}
	if available > maxKeyWidth {
		return maxKeyWidth
	}
	return available
}
