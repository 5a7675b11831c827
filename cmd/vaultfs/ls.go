package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/absfs/vaultfs"
)

var lsCmd = &cobra.Command{
	Use:   "ls <dir>",
	Short: "List a directory, decrypting names below vault roots",
	Args:  cobra.ExactArgs(1),
	RunE:  runLs,
}

var findCmd = &cobra.Command{
	Use:   "find <dir> [pattern]",
	Short: "Search a directory tree for matching names",
	Example: `  vaultfs --vault ./secrets find ./secrets '*.pdf'
  vaultfs --vault ./secrets find ./secrets --regex '^report-\d+'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFind,
}

var (
	findRegex   bool
	findFiles   bool
	findCacheSz int
)

func init() {
	rootCmd.AddCommand(lsCmd, findCmd)

	findCmd.Flags().BoolVar(&findRegex, "regex", false,
		"Treat pattern as a regular expression instead of a glob")
	findCmd.Flags().BoolVar(&findFiles, "files", false,
		"Only report regular files")
	findCmd.Flags().IntVar(&findCacheSz, "cache", 256,
		"Number of directory listings to cache during the search")
}

func runLs(cmd *cobra.Command, args []string) error {
	e, err := openLocalEnv()
	if err != nil {
		return err
	}
	dir, err := localPath(args[0])
	if err != nil {
		return err
	}
	entries, err := e.registry.List(e.session).List(cmd.Context(), dir)
	if err != nil {
		return err
	}
	return printEntries(cmd.OutOrStdout(), entries, false)
}

func runFind(cmd *cobra.Command, args []string) error {
	e, err := openLocalEnv()
	if err != nil {
		return err
	}
	dir, err := localPath(args[0])
	if err != nil {
		return err
	}
	filter, err := findFilter(args[1:])
	if err != nil {
		return err
	}

	cache := vaultfs.NewCache(findCacheSz)
	listener := func(d string, entries []vaultfs.Entry) {
		log.WithField("dir", d).Debugf("listed %d entries", len(entries))
	}
	found, err := e.registry.Search(e.session).Search(cmd.Context(), dir, filter, listener, cache)
	if err != nil {
		return err
	}
	return printEntries(cmd.OutOrStdout(), found, true)
}

func findFilter(args []string) (vaultfs.Filter, error) {
	var match vaultfs.Filter = vaultfs.AcceptAll
	if len(args) > 0 {
		var err error
		if findRegex {
			match, err = vaultfs.RegexFilter(args[0])
		} else {
			match, err = vaultfs.GlobFilter(args[0])
		}
		if err != nil {
			return nil, err
		}
	}
	if !findFiles {
		return match, nil
	}
	return vaultfs.FilterFunc(func(e vaultfs.Entry) bool {
		return !e.IsDir && match.Accept(e)
	}), nil
}

func printEntries(w io.Writer, entries []vaultfs.Entry, fullPath bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		name := e.Name
		if fullPath {
			name = e.Path
		}
		if e.IsDir {
			name += "/"
		}
		if e.Corrupt {
			name += " (corrupt)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", e.Mode, e.Size, e.ModTime.Format("2006-01-02 15:04"), name)
	}
	return tw.Flush()
}
