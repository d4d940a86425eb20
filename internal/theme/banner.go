package theme

import (
	"fmt"
)

// Banner returns the xsync banner.
func Banner() string {
	const cyan = "\033[36m"
	const yellow = "\033[33m"
	const reset = "\033[0m"

	return "" +
		cyan + "  x s y n c\n" + reset +
		yellow + "  ─────────────────────────────\n" + reset +
		"  your X posts, one markdown file each ✦\n"
}

// PrintBanner prints the banner to stdout.
func PrintBanner() {
	fmt.Print(Banner())
}
