package sink

import (
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
)

// Hyperlink wraps text in an OSC 8 escape sequence pointing at url.
func Hyperlink(text, url string) string {
	return "\x1b]8;;" + url + "\x1b\\" + text + "\x1b]8;;\x1b\\"
}

// SupportsHyperlinks reports whether f is a terminal known to render OSC 8
// hyperlinks. FORCE_HYPERLINK overrides detection either way.
func SupportsHyperlinks(f *os.File) bool {
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return detectHyperlinks(os.Getenv, tty)
}

// hyperlinkTermPrograms are TERM_PROGRAM values of terminals with OSC 8 support.
var hyperlinkTermPrograms = map[string]bool{
	"Hyper":       true,
	"iTerm.app":   true,
	"terminology": true,
	"WezTerm":     true,
	"vscode":      true,
	"ghostty":     true,
}

func detectHyperlinks(getenv func(string) string, tty bool) bool {
	if force := getenv("FORCE_HYPERLINK"); force != "" {
		return force != "0"
	}
	if !tty || getenv("CI") != "" {
		return false
	}

	if getenv("DOMTERM") != "" || getenv("WT_SESSION") != "" || getenv("KONSOLE_VERSION") != "" {
		return true
	}
	// VTE based terminals gained OSC 8 in 0.50.
	if v, err := strconv.Atoi(getenv("VTE_VERSION")); err == nil && v >= 5000 {
		return true
	}
	if hyperlinkTermPrograms[getenv("TERM_PROGRAM")] {
		return true
	}

	switch term := getenv("TERM"); {
	case term == "xterm-kitty", term == "alacritty", strings.HasPrefix(term, "foot"):
		return true
	}
	return false
}
