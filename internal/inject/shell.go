package inject

import "strings"

// Quote renders s as a single-quoted shell literal, closing the quote around
// each embedded single quote ('\''). Clipboard content is untrusted input
// from arbitrary applications; every interpolation into an `sh -c` string
// must go through here.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
