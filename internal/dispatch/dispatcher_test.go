package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jumpbot/internal/engine"
	"jumpbot/internal/graph"
	"jumpbot/internal/resolve"
	"jumpbot/internal/testutil"
)

func testDispatcher(t *testing.T, opts Options) *Dispatcher {
	t.Helper()
	return New(testutil.Engine(t, "Jita", "Amarr"), opts)
}

func TestHandle(t *testing.T) {
	d := testDispatcher(t, Options{})
	ctx := context.Background()

	r := d.Handle(ctx, "help")
	assert.Equal(t, HelpText, r.Help)
	assert.Equal(t, "ok", r.Outcome())

	r = d.Handle(ctx, "jita amarr safe")
	require.NotNil(t, r.Pair)
	assert.Equal(t, engine.OutcomeOK, r.Pair.Outcome)
	assert.Equal(t, graph.AvoidNull, r.Pair.Strategy)
	assert.Equal(t, 3, r.Pair.Route.Jumps)

	r = d.Handle(ctx, "Urlen")
	require.NotNil(t, r.Popular)
	assert.Len(t, r.Popular.Routes, 2)
	assert.Empty(t, r.Hint)

	r = d.Handle(ctx, "evac J0VE-A")
	require.NotNil(t, r.Nearest)
	require.NotEmpty(t, r.Nearest.Hits)
	assert.Equal(t, "Jita", r.Nearest.Hits[0].System)

	r = d.Handle(ctx, "Jita Amarr Tama path")
	require.NotNil(t, r.Multi)
	assert.Equal(t, 5, r.Multi.TotalJumps)
	assert.Len(t, r.Multi.Hops, 6)
}

func TestHandle_PathHintOnPopular(t *testing.T) {
	d := testDispatcher(t, Options{})
	r := d.Handle(context.Background(), "path Urlen")
	require.NotNil(t, r.Popular)
	assert.NotEmpty(t, r.Hint)
}

func TestHandle_Failures(t *testing.T) {
	d := testDispatcher(t, Options{MaxStops: 3})
	ctx := context.Background()

	r := d.Handle(ctx, "   ")
	assert.Equal(t, FailureMalformed, r.Failure)
	assert.Equal(t, "malformed", r.Outcome())

	r = d.Handle(ctx, "Jita Amarr Tama Rancer")
	assert.Equal(t, FailureTooManyStops, r.Failure)
	assert.Nil(t, r.Multi)

	r = d.Handle(ctx, "evac Jita Amarr")
	assert.Equal(t, FailureMalformed, r.Failure)
	assert.Contains(t, r.Message, "evac")
}

func TestHandle_UnresolvedIsNotAFailure(t *testing.T) {
	d := testDispatcher(t, Options{})
	r := d.Handle(context.Background(), "Jita Nowhere")
	assert.Empty(t, r.Failure)
	require.NotNil(t, r.Pair)
	assert.Equal(t, "unresolved", r.Outcome())
	require.Len(t, r.Warnings(), 1)
	assert.Equal(t, resolve.WarnUnknownSystem, r.Warnings()[0].Kind)
	assert.Empty(t, Reply{Help: HelpText}.Warnings())
}

func TestRun_Guards(t *testing.T) {
	d := testDispatcher(t, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := d.Run(ctx, Command{Kind: KindPair, Args: []string{"Jita", "Amarr"}})
	assert.Equal(t, FailureCanceled, r.Failure)
	assert.Nil(t, r.Pair)

	tests := []Command{
		{Kind: "teleport", Args: []string{"Jita"}},
		{Kind: KindPair, Args: []string{"Jita"}},
		{Kind: KindPopular, Args: []string{"Jita", "Amarr"}},
		{Kind: KindNearest, Args: nil, Feature: engine.FeatureEvac},
	}
	for _, cmd := range tests {
		r := d.Run(context.Background(), cmd)
		assert.Equal(t, FailureMalformed, r.Failure, "command %+v", cmd)
		assert.Equal(t, cmd.Kind, r.Command.Kind)
	}
}

func TestRun_RecoversPanics(t *testing.T) {
	d := testDispatcher(t, Options{})
	d.eng = nil

	r := d.Run(context.Background(), Command{Kind: KindPair, Args: []string{"Jita", "Amarr"}})
	assert.Equal(t, FailureInternal, r.Failure)
	assert.Equal(t, "something went wrong", r.Message)
}
