package main

import (
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>...",
	Short: "Remove files or directory trees",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRm,
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <dir>...",
	Short: "Create directories, encrypting their names below vault roots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMkdir,
}

func init() {
	rootCmd.AddCommand(rmCmd, mkdirCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	e, err := openLocalEnv()
	if err != nil {
		return err
	}
	del := e.registry.Delete(e.session)
	for _, a := range args {
		p, err := localPath(a)
		if err != nil {
			return err
		}
		if err := del.Delete(cmd.Context(), p); err != nil {
			return err
		}
	}
	return nil
}

func runMkdir(cmd *cobra.Command, args []string) error {
	e, err := openLocalEnv()
	if err != nil {
		return err
	}
	dir := e.registry.Directory(e.session)
	for _, a := range args {
		p, err := localPath(a)
		if err != nil {
			return err
		}
		if err := dir.Mkdir(cmd.Context(), p); err != nil {
			return err
		}
	}
	return nil
}
