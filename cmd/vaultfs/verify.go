package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/absfs/vaultfs"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Decrypt every file below dir and report authentication failures",
	Long: `Verify reads every file below dir through the vault overlays. Without
dir, every vault passed with --vault is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

var verifyWorkers int

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().IntVarP(&verifyWorkers, "workers", "w", 0,
		"Number of files checked concurrently (0 uses every CPU)")
}

func runVerify(cmd *cobra.Command, args []string) error {
	e, err := openLocalEnv()
	if err != nil {
		return err
	}
	var dirs []string
	if len(args) == 1 {
		p, err := localPath(args[0])
		if err != nil {
			return err
		}
		dirs = append(dirs, p)
	} else {
		for _, v := range e.vaults {
			dirs = append(dirs, v.Root())
		}
	}
	if len(dirs) == 0 {
		return fmt.Errorf("nothing to verify: pass a directory or --vault")
	}

	cfg := vaultfs.DefaultParallelConfig()
	if verifyWorkers > 0 {
		cfg.MaxWorkers = verifyWorkers
	}
	failed := 0
	for _, d := range dirs {
		report, err := vaultfs.Verify(cmd.Context(), e.registry, e.session, d, cfg)
		if err != nil {
			return err
		}
		failed += printReport(cmd.OutOrStdout(), d, report)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed verification", failed)
	}
	return nil
}

func printReport(w io.Writer, dir string, report *vaultfs.VerifyReport) int {
	for _, p := range report.FailedPaths() {
		fmt.Fprintf(w, "FAIL %s: %v\n", p, report.Failed[p])
	}
	fmt.Fprintf(w, "%s: %d checked, %d failed\n", dir, report.Checked, len(report.Failed))
	return len(report.Failed)
}
