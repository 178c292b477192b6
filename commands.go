package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jumpbot/internal/dispatch"
	"jumpbot/internal/engine"
	"jumpbot/internal/graph"
)

var (
	withPath     bool
	safeRoute    bool
	lowsecRoute  bool
	nearestCount int
)

func addRouteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&withPath, "path", "p", false, "Show every hop")
	cmd.Flags().BoolVar(&safeRoute, "safe", false, "Avoid nullsec where possible")
	cmd.Flags().BoolVar(&lowsecRoute, "lowsec", false, "Stay in lowsec (capital ships)")
	cmd.MarkFlagsMutuallyExclusive("safe", "lowsec")
}

func routeStrategy() graph.Strategy {
	switch {
	case safeRoute:
		return graph.AvoidNull
	case lowsecRoute:
		return graph.LowsecOnly
	}
	return graph.Shortest
}

var routeCmd = &cobra.Command{
	Use:   "route FROM TO",
	Short: "Jump count between two systems",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), dispatch.Command{Kind: dispatch.KindPair, Args: args, Strategy: routeStrategy(), WithPath: withPath})
	},
}

var multiCmd = &cobra.Command{
	Use:   "multi STOP STOP [STOP...]",
	Short: "Route through several stops in order",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), dispatch.Command{Kind: dispatch.KindMulti, Args: args, Strategy: routeStrategy(), WithPath: withPath})
	},
}

var popularCmd = &cobra.Command{
	Use:   "popular SYSTEM",
	Short: "Jump counts from the popular systems",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd.Context(), dispatch.Command{Kind: dispatch.KindPopular, Args: args})
	},
}

var nearestCmd = &cobra.Command{
	Use:   "nearest FEATURE SYSTEM",
	Short: "Closest evac (non-nullsec), trade hub or NPC station",
	Long: `Breadth-first search for the closest systems with a feature.
FEATURE is one of: evac, trade_hub (itc, market), station.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		feature, err := engine.ParseFeature(args[0])
		if err != nil {
			return err
		}
		_, d, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		res := d.Engine().Nearest(engine.NearestQuery{From: args[1], Feature: feature, Count: nearestCount, WithPath: withPath})
		if jsonOutput {
			return writeJSONOut(os.Stdout, res)
		}
		var b strings.Builder
		renderNearest(&b, res)
		fmt.Print(b.String())
		return nil
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve NAME [NAME...]",
	Short: "Show how typed names resolve to catalog systems",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, d, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		var all []interface{}
		for _, a := range args {
			r := d.Engine().Resolve(a)
			if jsonOutput {
				all = append(all, r)
				continue
			}
			fmt.Print(renderResolution(r))
		}
		if jsonOutput {
			return writeJSONOut(os.Stdout, all)
		}
		return nil
	},
}

var commandCmd = &cobra.Command{
	Use:   "command TEXT...",
	Short: "Run a free-form chat command, e.g. 'Taisy CZDJ-1 safe path'",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, d, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		reply := d.Handle(cmd.Context(), strings.Join(args, " "))
		if jsonOutput {
			return writeJSONOut(os.Stdout, reply)
		}
		fmt.Print(renderReply(reply))
		return nil
	},
}

var fleetpingCmd = &cobra.Command{
	Use:   "fleetping TEXT...",
	Short: "Report popular-system distances for nullsec systems named in a broadcast",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, d, cleanup, err := setup()
		if err != nil {
			return err
		}
		defer cleanup()
		results := d.FleetPing(strings.Join(args, " "))
		if jsonOutput {
			if results == nil {
				results = []engine.PopularResult{}
			}
			return writeJSONOut(os.Stdout, results)
		}
		var b strings.Builder
		for _, r := range results {
			renderPopular(&b, r)
		}
		fmt.Print(truncate(b.String()))
		return nil
	},
}

// runQuery executes a structured command through the dispatcher.
func runQuery(ctx context.Context, c dispatch.Command) error {
	_, d, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	reply := d.Run(ctx, c)
	if jsonOutput {
		return writeJSONOut(os.Stdout, reply)
	}
	fmt.Print(renderReply(reply))
	if reply.Failure != "" {
		return fmt.Errorf("%s: %s", reply.Failure, reply.Message)
	}
	return nil
}

func init() {
	addRouteFlags(routeCmd)
	addRouteFlags(multiCmd)
	nearestCmd.Flags().BoolVarP(&withPath, "path", "p", false, "Show the path to the closest hit")
	nearestCmd.Flags().IntVarP(&nearestCount, "count", "n", 0, "Number of results (default from config)")
	rootCmd.AddCommand(routeCmd, multiCmd, popularCmd, nearestCmd, resolveCmd, commandCmd, fleetpingCmd)
}
