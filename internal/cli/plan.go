package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/loadunload"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/pipeline"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// planFlags are shared by balance and load.
type planFlags struct {
	out     string
	json    bool
	noCache bool
	refresh bool
	noWrite bool
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "outbound manifest path (default <manifest>OUTBOUND.txt)")
	cmd.Flags().BoolVar(&f.json, "json", false, "print the plan as JSON")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the plan cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when a cached plan exists")
	cmd.Flags().BoolVar(&f.noWrite, "no-write", false, "do not write the outbound manifest")
}

// balanceCommand creates the balance command.
func (c *CLI) balanceCommand() *cobra.Command {
	var flags planFlags
	cmd := &cobra.Command{
		Use:   "balance MANIFEST",
		Short: "Plan moves that balance the ship's hold",
		Long: `Plan crane moves that bring the heavier half of the hold within 10% of
the lighter half. The crane starts and ends at its rest position and no
container is left in the buffer.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlan(cmd.Context(), pipeline.KindBalance, args[0], flags, func(ctx context.Context, r *pipeline.Runner, m *manifest.Grid, opts pipeline.Options) (*pipeline.Plan, bool, error) {
				return r.RunBalance(ctx, m, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

// loadCommand creates the load command.
func (c *CLI) loadCommand() *cobra.Command {
	var (
		flags   planFlags
		loads   []string
		unloads []string
	)
	cmd := &cobra.Command{
		Use:   "load MANIFEST",
		Short: "Plan loading and unloading containers",
		Long: `Plan crane moves that put the --load containers on the ship and take the
--unload containers off it. Repeat a name to unload several containers
that share it.`,
		Example:           `  craneplan load ShipCase3.txt --unload Cat --load Owl:500 --load "Rat Trap:1200"`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := parseRequest(loads, unloads)
			if err != nil {
				return err
			}
			return c.runPlan(cmd.Context(), pipeline.KindLoad, args[0], flags, func(ctx context.Context, r *pipeline.Runner, m *manifest.Grid, opts pipeline.Options) (*pipeline.Plan, bool, error) {
				return r.RunLoad(ctx, m, req, opts)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVarP(&loads, "load", "l", nil, "container to load as NAME:WEIGHT (repeatable)")
	cmd.Flags().StringArrayVarP(&unloads, "unload", "u", nil, "container name to unload (repeatable)")
	return cmd
}

// parseRequest turns --load and --unload values into a request.
func parseRequest(loads, unloads []string) (loadunload.Request, error) {
	var req loadunload.Request
	for _, arg := range loads {
		i := strings.LastIndex(arg, ":")
		if i <= 0 {
			return req, errs.New(errs.ErrCodeInvalidInput, "--load %q: want NAME:WEIGHT", arg)
		}
		w, err := strconv.Atoi(strings.TrimSpace(arg[i+1:]))
		if err != nil {
			return req, errs.New(errs.ErrCodeInvalidInput, "--load %q: weight must be an integer", arg)
		}
		req.Loads = append(req.Loads, yard.Container{Name: arg[:i], Weight: w})
	}
	req.Unloads = unloads
	if len(req.Loads) == 0 && len(req.Unloads) == 0 {
		return req, errs.New(errs.ErrCodeInvalidInput, "give at least one --load or --unload")
	}
	return req, req.Validate()
}

type runFunc func(ctx context.Context, r *pipeline.Runner, m *manifest.Grid, opts pipeline.Options) (*pipeline.Plan, bool, error)

func (c *CLI) runPlan(ctx context.Context, kind, path string, flags planFlags, run runFunc) error {
	logger := loggerFromContext(ctx)
	if err := errs.ValidateManifestPath(path); err != nil {
		return err
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	m, err := manifest.ReadFile(path)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer runner.Cache.Close()

	opts := cfg.PipelineOptions()
	opts.Refresh = flags.refresh
	opts.Logger = logger

	st := startStep(logger, "Planned "+kind)
	spinner := newSpinnerWithContext(ctx, "Planning crane moves...")
	spinner.Start()
	plan, hit, err := run(ctx, runner, m, opts)
	spinner.Stop()
	if err != nil {
		st.failed(err)
		return err
	}
	st.done("moves", len(plan.Moves), "total", plan.TotalTime, "cached", hit)

	out := flags.out
	if out == "" {
		out = manifest.OutboundPath(path)
	}
	if !flags.noWrite {
		if err := manifest.WriteFile(out, plan.Manifest); err != nil {
			return fmt.Errorf("write outbound manifest: %w", err)
		}
	}

	if flags.json {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	printPlan(plan, hit)
	if !flags.noWrite {
		printSuccess("Outbound manifest written")
		printFile(out)
	}
	return nil
}

// printPlan renders a plan for the terminal.
func printPlan(plan *pipeline.Plan, cached bool) {
	printNewline()
	fmt.Fprintln(stdout, StyleTitle.Render(fmt.Sprintf("%s plan", strings.ToUpper(plan.Kind[:1])+plan.Kind[1:])))
	printKeyValue("Plan", plan.ID.String())
	printStats(len(plan.Moves), plan.TotalTime, cached)
	printNewline()

	if len(plan.Moves) == 0 {
		printInfo("Nothing to do: the ship already satisfies the request")
		return
	}
	printBlock(renderMoves(plan.Moves))
	printNewline()
	for i, step := range plan.Steps() {
		printDetail("%2d. %s", i+1, step)
	}
	printNewline()
}
