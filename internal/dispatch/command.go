// Package dispatch turns free-form chat text into structured routing queries
// and runs them against the engine. The engine itself never sees raw text.
package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/shlex"

	"jumpbot/internal/engine"
	"jumpbot/internal/graph"
)

// Kind is the shape of a classified command.
type Kind string

const (
	KindHelp    Kind = "help"
	KindPopular Kind = "popular"
	KindPair    Kind = "pair"
	KindMulti   Kind = "multi"
	KindNearest Kind = "nearest"
)

var (
	// ErrEmpty is returned for text with no arguments.
	ErrEmpty = errors.New("empty command")
	// ErrMalformed is returned when modifiers leave an unusable argument list.
	ErrMalformed = errors.New("malformed command")
)

// Command is a classified request.
type Command struct {
	Kind     Kind           `json:"kind"`
	Args     []string       `json:"args"`
	Strategy graph.Strategy `json:"strategy"`
	WithPath bool           `json:"with_path"`
	Feature  engine.Feature `json:"feature,omitempty"`
}

// Modifier and feature terms match as case-insensitive substrings of an
// argument. None of them may collide with a system name.
var (
	pathTerms   = []string{"path", "detail", "full", "hops"}
	safeTerms   = []string{"safe", "safer"}
	lowsecTerms = []string{"lowsec"}

	featureTerms = []struct {
		feature engine.Feature
		terms   []string
	}{
		{engine.FeatureEvac, []string{"escape", "evac", "evacuate"}},
		{engine.FeatureTradeHub, []string{"itc", "trade", "market"}},
		{engine.FeatureStation, []string{"station", "stations"}},
	}
)

const stripChars = ".,;:!'\""

// SplitArgs splits text like a shell: whitespace separates arguments and
// single or double quotes group them. On an unterminated quote it falls back
// to dropping every quote and splitting on spaces.
func SplitArgs(text string) []string {
	args, err := shlex.Split(text)
	if err == nil {
		return args
	}
	cleaned := strings.NewReplacer("'", "", `"`, "").Replace(text)
	return strings.Fields(cleaned)
}

// findTerm returns the index of the first argument containing any term.
func findTerm(args, terms []string) int {
	for i, arg := range args {
		lower := strings.ToLower(arg)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return i
			}
		}
	}
	return -1
}

func remove(args []string, i int) []string {
	return append(args[:i:i], args[i+1:]...)
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(stripChars, r) {
			return -1
		}
		return r
	}, s)
}

// Classify maps split arguments onto a command. Modifiers are only honoured
// when at least two arguments were given, and each category consumes the first
// matching argument only.
func Classify(args []string, maxStops int) (Command, error) {
	if maxStops <= 0 {
		maxStops = engine.DefaultMaxStops
	}
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if a = strings.TrimSpace(a); a != "" {
			rest = append(rest, a)
		}
	}
	if len(rest) == 0 {
		return Command{}, ErrEmpty
	}

	cmd := Command{Strategy: graph.Shortest}
	if len(rest) >= 2 {
		if i := findTerm(rest, pathTerms); i >= 0 {
			rest = remove(rest, i)
			cmd.WithPath = true
		}
		if i := findTerm(rest, safeTerms); i >= 0 {
			rest = remove(rest, i)
			cmd.Strategy = graph.AvoidNull
		}
		if i := findTerm(rest, lowsecTerms); i >= 0 {
			rest = remove(rest, i)
			cmd.Strategy = graph.LowsecOnly
		}
		for _, ft := range featureTerms {
			i := findTerm(rest, ft.terms)
			if i < 0 {
				continue
			}
			rest = remove(rest, i)
			if len(rest) != 1 {
				return Command{}, fmt.Errorf("%s search takes exactly one system: %w", ft.feature, ErrMalformed)
			}
			cmd.Kind = KindNearest
			cmd.Feature = ft.feature
			cmd.Args = rest
			return cmd, nil
		}
	}

	switch n := len(rest); {
	case n == 0:
		return Command{}, ErrMalformed
	case n == 1:
		cmd.Kind = KindPopular
		if strings.Contains(strings.ToLower(rest[0]), "help") {
			cmd.Kind = KindHelp
		}
	case n == 2:
		cmd.Kind = KindPair
	case n > maxStops:
		return Command{}, fmt.Errorf("%d stops, limit %d: %w", n, maxStops, engine.ErrTooManyStops)
	default:
		cmd.Kind = KindMulti
		stripped := rest[:0:0]
		for _, a := range rest {
			if a = stripPunctuation(a); a != "" {
				stripped = append(stripped, a)
			}
		}
		rest = stripped
	}
	cmd.Args = rest
	return cmd, nil
}

// Parse splits and classifies text in one step.
func Parse(text string, maxStops int) (Command, error) {
	return Classify(SplitArgs(text), maxStops)
}
