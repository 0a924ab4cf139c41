package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/craneplan/pkg/balance"
	errs "github.com/matzehuels/craneplan/pkg/errors"
	"github.com/matzehuels/craneplan/pkg/manifest"
	"github.com/matzehuels/craneplan/pkg/pipeline"
	"github.com/matzehuels/craneplan/pkg/yard"
)

// showCommand creates the show command.
func (c *CLI) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show MANIFEST",
		Short:             "Print a manifest as a grid with its weight balance",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: manifestArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
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
			s, err := yard.Build(cfg.Layout, m)
			if err != nil {
				return err
			}

			fmt.Fprintln(stdout, StyleTitle.Render(filepath.Base(path)))
			printBlock(renderGrid(m))

			left, right := s.SideWeights()
			printKeyValue("Left", fmt.Sprintf("%d kg", left))
			printKeyValue("Right", fmt.Sprintf("%d kg", right))
			if hash, err := pipeline.ManifestHash(m); err == nil {
				printKeyValue("Hash", hash[:12])
			}
			if balance.Balanced(left, right) {
				printSuccess("Balanced")
			} else {
				printWarning("Not balanced")
				printNextStep("Plan a balance", "craneplan balance "+path)
			}
			return nil
		},
	}
}

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var showGrid bool
	cmd := &cobra.Command{
		Use:   "replay MANIFEST PLAN.json",
		Short: "Verify a saved plan against its inbound manifest",
		Long: `Replay every move of a plan saved with --json on the manifest it was
computed from, and check that the recorded total time and outbound manifest
match the result.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			m, err := manifest.ReadFile(args[0])
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[1])
			if err != nil {
				return errs.Wrap(errs.ErrCodeFileNotFound, err, "plan %s", args[1])
			}
			var plan pipeline.Plan
			if err := json.Unmarshal(data, &plan); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidPlan, err, "decode %s", args[1])
			}

			final, err := pipeline.Verify(cfg.Layout, m, &plan)
			if err != nil {
				printError("Plan %s does not replay", plan.ID)
				return err
			}
			printSuccess("Plan %s replays cleanly", plan.ID)
			printKeyValue("Moves", fmt.Sprintf("%d", len(plan.Moves)))
			printKeyValue("Total", fmt.Sprintf("%d minutes", final.Cost()))
			if showGrid {
				out, err := final.Manifest()
				if err != nil {
					return err
				}
				printBlock(renderGrid(out))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showGrid, "grid", false, "print the replayed outbound grid")
	return cmd
}
