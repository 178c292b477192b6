package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

var (
	mu    sync.Mutex
	debug bool
	out   *os.File // nil means os.Stdout
)

// SetOutput redirects log lines, e.g. to os.Stderr when stdout carries JSON.
// nil restores os.Stdout.
func SetOutput(f *os.File) {
	mu.Lock()
	out = f
	mu.Unlock()
}

func output() *os.File {
	if out != nil {
		return out
	}
	return os.Stdout
}

// SetDebug toggles Debug output.
func SetDebug(enabled bool) {
	mu.Lock()
	debug = enabled
	mu.Unlock()
}

// DebugEnabled reports whether Debug lines are printed.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debug
}

// colorize wraps s in an ANSI colour when the output is a terminal.
// Callers hold mu.
func colorize(color, s string) string {
	fd := output().Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return s
	}
	return color + s + colorReset
}

func line(color, level, tag, msg string) {
	ts := time.Now().Format("15:04:05")
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output(), "%s %s %s %s\n",
		colorize(colorGray, ts),
		colorize(color, fmt.Sprintf("%-4s", level)),
		colorize(colorBold, "["+tag+"]"),
		msg)
}

// Info prints a neutral progress line.
func Info(tag, msg string) { line(colorBlue, "INFO", tag, msg) }

// Success prints a completed-step line.
func Success(tag, msg string) { line(colorGreen, "OK", tag, msg) }

// Warn prints a recoverable problem.
func Warn(tag, msg string) { line(colorYellow, "WARN", tag, msg) }

// Error prints a failure.
func Error(tag, msg string) { line(colorRed, "ERR", tag, msg) }

// Debug prints only when SetDebug(true) was called.
func Debug(tag, msg string) {
	if !DebugEnabled() {
		return
	}
	line(colorGray, "DBG", tag, msg)
}

// Banner prints the startup banner.
func Banner(version string) {
	if version == "" {
		version = "dev"
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(output(), colorize(colorCyan+colorBold, "  jumpbot "+version))
	fmt.Fprintln(output(), colorize(colorGray, "  stargate routing for New Eden"))
	fmt.Fprintln(output())
}

// Section prints a heading for a block of Stats lines.
func Section(title string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output(), "\n%s\n%s\n", colorize(colorBold, title), strings.Repeat("-", len(title)))
}

// Stats prints an aligned key/value line.
func Stats(key string, value interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(output(), "  %-20s %v\n", key+":", value)
}

// Server announces the listen address.
func Server(addr string) {
	Success("HTTP", fmt.Sprintf("Listening on http://%s", addr))
}
