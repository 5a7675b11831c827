package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/absfs/vaultfs"
)

var cpCmd = &cobra.Command{
	Use:   "cp <source> <target>",
	Short: "Copy a file or directory tree, encrypting or decrypting at vault boundaries",
	Example: `  vaultfs --vault ./secrets cp ./notes ./secrets/notes
  vaultfs --vault ./secrets cp ./secrets/notes ./restored`,
	Args: cobra.ExactArgs(2),
	RunE: runCp,
}

var mvCmd = &cobra.Command{
	Use:   "mv <source> <target>",
	Short: "Move a file or directory tree",
	Long: `Mv renames in place when source and target share a vault (or both
lie outside every vault). Across a vault boundary the tree is copied
and the source removed afterwards.`,
	Args: cobra.ExactArgs(2),
	RunE: runMv,
}

func init() {
	rootCmd.AddCommand(cpCmd, mvCmd)
}

func runCp(cmd *cobra.Command, args []string) error {
	e, source, target, err := pairArgs(args)
	if err != nil {
		return err
	}
	return e.copyTree(cmd.Context(), source, target)
}

func runMv(cmd *cobra.Command, args []string) error {
	e, source, target, err := pairArgs(args)
	if err != nil {
		return err
	}
	return e.move(cmd.Context(), source, target)
}

func pairArgs(args []string) (*env, string, string, error) {
	e, err := openLocalEnv()
	if err != nil {
		return nil, "", "", err
	}
	source, err := localPath(args[0])
	if err != nil {
		return nil, "", "", err
	}
	target, err := localPath(args[1])
	if err != nil {
		return nil, "", "", err
	}
	return e, source, target, nil
}

func (e *env) copyTree(ctx context.Context, source, target string) error {
	cp := e.registry.Copy(e.session)
	if !cp.IsSupported(source, target) {
		return fmt.Errorf("cannot copy %s onto %s", source, target)
	}
	return vaultfs.CopyTree(ctx, cp, e.registry.List(e.session), e.registry.Attributes(e.session), source, target)
}

// move renames when the overlays allow it and falls back to copy and
// delete across a vault boundary.
func (e *env) move(ctx context.Context, source, target string) error {
	mv := e.registry.Move(e.session)
	if mv.IsSupported(source, target) {
		return mv.Move(ctx, source, target)
	}
	log.WithFields(logrus.Fields{"source": source, "target": target}).Info("moving across a vault boundary")
	if err := e.copyTree(ctx, source, target); err != nil {
		return err
	}
	return e.registry.Delete(e.session).Delete(ctx, source)
}
