package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

const (
	ModeAuto  = "auto"
	ModeTUI   = "tui"
	ModePlain = "plain"
)

// ModeDecision captures whether to use the viewer.
type ModeDecision struct {
	UseTUI  bool
	Warning string
}

// isTerminal reports whether a writer is a TTY.
var isTerminal = defaultIsTerminal

// ResolveMode determines whether to start the viewer for the requested mode.
func ResolveMode(mode string, stdout io.Writer) (ModeDecision, error) {
	normalized := strings.ToLower(strings.TrimSpace(mode))
	if normalized == "" {
		normalized = ModeAuto
	}
	switch normalized {
	case ModeAuto:
		return ModeDecision{UseTUI: isTerminal(stdout)}, nil
	case ModeTUI:
		if isTerminal(stdout) {
			return ModeDecision{UseTUI: true}, nil
		}
		return ModeDecision{
			UseTUI:  false,
			Warning: "viewer requested but stdout is not a terminal; falling back to plain output",
		}, nil
	case ModePlain:
		return ModeDecision{UseTUI: false}, nil
	default:
		return ModeDecision{}, fmt.Errorf("invalid ui mode %q (expected auto|tui|plain)", mode)
	}
}

// defaultIsTerminal inspects stdout for TTY support.
func defaultIsTerminal(stdout io.Writer) bool {
	if stdout == nil {
		return false
	}
	if file, ok := stdout.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	if fder, ok := stdout.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(fder.Fd()))
	}
	return false
}
