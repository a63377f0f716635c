// cmd/car-assistant/ui.go
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

var (
	headingColor = color.New(color.FgMagenta, color.Bold)
	infoColor    = color.New(color.FgCyan)
	okColor      = color.New(color.FgGreen)
	errColor     = color.New(color.FgRed)
)

func heading(title string) {
	headingColor.Printf("━━━ %s ━━━\n", strings.ToUpper(title))
}

func info(format string, args ...interface{}) {
	infoColor.Printf("ℹ %s\n", fmt.Sprintf(format, args...))
}

func success(format string, args ...interface{}) {
	okColor.Printf("✓ %s\n", fmt.Sprintf(format, args...))
}

func failure(format string, args ...interface{}) {
	errColor.Fprintf(os.Stderr, "✗ %s\n", fmt.Sprintf(format, args...))
}

func newSpinner(message string) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " " + message
	s.Writer = os.Stderr
	return s
}
