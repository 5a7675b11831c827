package main

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/absfs/vaultfs"
)

var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print a file, decrypting it when it lies in a vault",
	Example: `  vaultfs --vault ./secrets cat ./secrets/todo.txt
  vaultfs --vault ./secrets cat ./secrets/big.log --offset 1048576 --length 4096`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

var (
	catOffset int64
	catLength int64
)

func init() {
	rootCmd.AddCommand(catCmd)

	catCmd.Flags().Int64Var(&catOffset, "offset", 0,
		"Start reading at this plaintext offset")
	catCmd.Flags().Int64Var(&catLength, "length", 0,
		"Read at most this many bytes (0 reads to the end)")
}

func runCat(cmd *cobra.Command, args []string) error {
	e, err := openLocalEnv()
	if err != nil {
		return err
	}
	p, err := localPath(args[0])
	if err != nil {
		return err
	}

	status := vaultfs.NewStatus()
	status.Offset = catOffset
	status.Length = catLength
	rc, err := e.registry.Read(e.session).Read(cmd.Context(), p, status)
	if err != nil {
		return err
	}
	defer rc.Close()

	_, err = io.Copy(cmd.OutOrStdout(), rc)
	return err
}
