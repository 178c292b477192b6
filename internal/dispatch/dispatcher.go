package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"jumpbot/internal/engine"
	"jumpbot/internal/logger"
	"jumpbot/internal/resolve"
)

var commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "jumpbot_commands_total",
	Help: "Dispatched commands by kind and outcome",
}, []string{"kind", "outcome"})

var tracer = otel.Tracer("jumpbot/dispatch")

// Failure tags a reply that carries no engine result.
type Failure string

const (
	FailureMalformed    Failure = "malformed"
	FailureTooManyStops Failure = "too_many_stops"
	FailureCanceled     Failure = "canceled"
	// FailureInternal is the generic placeholder for unexpected errors.
	FailureInternal Failure = "internal"
)

// HelpText describes the accepted command forms.
const HelpText = `Jump counts from the popular systems:   jumpbot <system>
Jump count between a pair:              jumpbot Jita Amarr
Names with spaces:                      jumpbot "New Caldari" Taisy
Multi-stop route:                       jumpbot Taisy Alikara Jita
Show every hop:                         jumpbot path Taisy Alikara
Avoid nullsec where possible:           jumpbot Taisy CZDJ-1 safe
Lowsec-only route (capitals):           jumpbot Keri Access lowsec
Closest system outside nullsec:         jumpbot evac CZDJ-1
Closest trade hub:                      jumpbot itc Taisy
Closest NPC station:                    jumpbot station UEJX-G
Names are case-insensitive and may be abbreviated.`

// Reply is the result of running a command. Exactly one of the result fields
// is set unless Failure is.
type Reply struct {
	Command Command               `json:"command"`
	Help    string                `json:"help,omitempty"`
	Pair    *engine.PairResult    `json:"pair,omitempty"`
	Multi   *engine.MultiResult   `json:"multi,omitempty"`
	Popular *engine.PopularResult `json:"popular,omitempty"`
	Nearest *engine.NearestResult `json:"nearest,omitempty"`
	Failure Failure               `json:"failure,omitempty"`
	Message string                `json:"message,omitempty"`
	// Hint is a usage note, e.g. a path request with a single system.
	Hint string `json:"hint,omitempty"`
}

// Outcome summarizes the reply in one word for metrics and history.
func (r Reply) Outcome() string {
	switch {
	case r.Failure != "":
		return string(r.Failure)
	case r.Pair != nil:
		return string(r.Pair.Outcome)
	case r.Multi != nil:
		return string(r.Multi.Outcome)
	case r.Popular != nil:
		return string(r.Popular.Outcome)
	case r.Nearest != nil:
		return string(r.Nearest.Outcome)
	}
	return string(engine.OutcomeOK)
}

// Warnings returns the name-resolution warnings carried by the result.
func (r Reply) Warnings() []resolve.Warning {
	switch {
	case r.Pair != nil:
		return r.Pair.Warnings
	case r.Multi != nil:
		return r.Multi.Warnings
	case r.Popular != nil:
		return r.Popular.Warnings
	case r.Nearest != nil:
		return r.Nearest.Warnings
	}
	return nil
}

// Options tunes a Dispatcher.
type Options struct {
	MaxStops          int
	FleetPingMinJumps int
	FuzzyDenylist     []string
}

// Dispatcher executes commands against an engine.
type Dispatcher struct {
	eng      *engine.Engine
	opts     Options
	denylist map[string]bool
}

// New creates a Dispatcher.
func New(eng *engine.Engine, opts Options) *Dispatcher {
	if opts.MaxStops <= 0 {
		opts.MaxStops = eng.MaxStops()
	}
	if opts.FleetPingMinJumps <= 0 {
		opts.FleetPingMinJumps = 5
	}
	d := &Dispatcher{eng: eng, opts: opts, denylist: make(map[string]bool, len(opts.FuzzyDenylist))}
	for _, w := range opts.FuzzyDenylist {
		d.denylist[strings.ToLower(w)] = true
	}
	return d
}

// Engine returns the engine the dispatcher runs against.
func (d *Dispatcher) Engine() *engine.Engine { return d.eng }

// Handle parses free text and runs it.
func (d *Dispatcher) Handle(ctx context.Context, text string) Reply {
	cmd, err := Parse(text, d.opts.MaxStops)
	if err != nil {
		r := Reply{Failure: FailureMalformed, Message: err.Error()}
		if errors.Is(err, engine.ErrTooManyStops) {
			r.Failure = FailureTooManyStops
		}
		commandsTotal.WithLabelValues("unparsed", string(r.Failure)).Inc()
		return r
	}
	return d.Run(ctx, cmd)
}

// Run executes a classified command. Panics are recovered and reported as a
// generic failure so one bad query never takes the process down.
func (d *Dispatcher) Run(ctx context.Context, cmd Command) (reply Reply) {
	ctx, span := tracer.Start(ctx, "dispatch."+string(cmd.Kind))
	span.SetAttributes(
		attribute.String("jumpbot.kind", string(cmd.Kind)),
		attribute.StringSlice("jumpbot.args", cmd.Args),
		attribute.String("jumpbot.strategy", cmd.Strategy.String()),
	)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Dispatch", fmt.Sprintf("panic in %s %v: %v\n%s", cmd.Kind, cmd.Args, rec, debug.Stack()))
			reply = Reply{Command: cmd, Failure: FailureInternal, Message: "something went wrong"}
			span.SetStatus(codes.Error, fmt.Sprint(rec))
		}
		outcome := reply.Outcome()
		span.SetAttributes(
			attribute.String("jumpbot.outcome", outcome),
			attribute.StringSlice("jumpbot.warnings", resolve.SortedKinds(reply.Warnings())),
		)
		commandsTotal.WithLabelValues(string(cmd.Kind), outcome).Inc()
		span.End()
	}()

	reply.Command = cmd
	if err := ctx.Err(); err != nil {
		reply.Failure = FailureCanceled
		reply.Message = err.Error()
		return reply
	}

	switch cmd.Kind {
	case KindHelp:
		reply.Help = HelpText
	case KindPopular:
		if len(cmd.Args) != 1 {
			return malformed(reply, "popular query takes one system")
		}
		res := d.eng.Popular(cmd.Args[0])
		reply.Popular = &res
		if cmd.WithPath {
			reply.Hint = "give both a start and an end to see the full path"
		}
	case KindPair:
		if len(cmd.Args) != 2 {
			return malformed(reply, "pair query takes two systems")
		}
		res := d.eng.Pair(engine.PairQuery{From: cmd.Args[0], To: cmd.Args[1], Strategy: cmd.Strategy, WithPath: cmd.WithPath})
		reply.Pair = &res
	case KindMulti:
		res, err := d.eng.MultiStop(engine.MultiQuery{Stops: cmd.Args, Strategy: cmd.Strategy, WithPath: cmd.WithPath})
		if err != nil {
			reply.Failure = FailureTooManyStops
			reply.Message = err.Error()
			return reply
		}
		reply.Multi = &res
	case KindNearest:
		if len(cmd.Args) != 1 {
			return malformed(reply, "nearest query takes one system")
		}
		res := d.eng.Nearest(engine.NearestQuery{From: cmd.Args[0], Feature: cmd.Feature, WithPath: cmd.WithPath})
		reply.Nearest = &res
	default:
		return malformed(reply, fmt.Sprintf("unknown command kind %q", cmd.Kind))
	}
	return reply
}

func malformed(r Reply, msg string) Reply {
	r.Failure = FailureMalformed
	r.Message = msg
	return r
}
