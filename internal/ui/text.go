package ui

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Formatter renders one kind of CLI text: colored on capable terminals,
// wrapped in prefix and suffix otherwise.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if noColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

var (
	// Code: commands to run. `backticks` without color.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Path: files and directories.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	Flag    = Formatter{color.New(color.FgYellow), "", ""}
	Success = Formatter{color.New(color.FgGreen), "", ""}
	Error   = Formatter{color.New(color.FgRed), "", ""}
	Warning = Formatter{color.New(color.FgYellow), "", ""}
	Info    = Formatter{color.New(color.FgCyan), "", ""}

	// Vault: vault names. 'single quotes' without color.
	Vault = Formatter{color.New(color.FgCyan, color.Bold), "'", "'"}

	// Title: note titles. "double quotes" without color.
	Title = Formatter{color.New(color.FgWhite, color.Bold), `"`, `"`}

	// Muted: note ids and secondary details. (parentheses) without color.
	Muted = Formatter{color.New(color.FgHiBlack), "(", ")"}
)

// Status line markers.
const (
	CheckMark = "✓"
	Cross     = "✗"
	Arrow     = "→"
	Caution   = "⚠"
)

// Ok prefixes msg with a green check mark.
func Ok(msg string) string {
	return Success.Sprint(CheckMark) + " " + msg
}

// Fail prefixes msg with a red cross.
func Fail(msg string) string {
	return Error.Sprint(Cross) + " " + msg
}

// Hint prefixes msg with a cyan arrow.
func Hint(msg string) string {
	return Info.Sprint(Arrow) + " " + msg
}

// EnsureNewline appends a newline to s unless it already ends with one.
func EnsureNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s + "\n"
	}
	return s
}

// Preview returns the first line of message cut to at most width runes,
// marking any cut with an ellipsis.
func Preview(message string, width int) string {
	line, _, more := strings.Cut(message, "\n")
	line = strings.TrimRight(line, "\r")
	if width <= 0 {
		return ""
	}
	if utf8.RuneCountInString(line) > width {
		runes := []rune(line)
		return string(runes[:max(width-1, 0)]) + "…"
	}
	if more && line != "" {
		return line + " …"
	}
	return line
}

// noColor reports whether output should be plain: NO_COLOR is set
// (https://no-color.org/) or fatih/color detected an incapable terminal.
func noColor() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}
