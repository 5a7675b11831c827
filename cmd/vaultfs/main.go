package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vaultfs",
	Short: "Work with encrypted vaults inside a local directory tree",
	Long: `vaultfs reads and writes files through encrypted vaults.

Every directory passed with --vault is unlocked and mounted at its own
path. Paths below a vault root are stored encrypted; all other paths
are plain files.`,
	Example: `  vaultfs init ./secrets
  vaultfs --vault ./secrets cp ./notes ./secrets/notes
  vaultfs --vault ./secrets cat ./secrets/notes/todo.txt`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var (
	vaultRoots []string
	password   string
	keyEnv     string
	logLevel   string
	logJSON    bool

	log = logrus.New()
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringArrayVar(&vaultRoots, "vault", nil,
		"Vault root to unlock (repeatable)")
	flags.StringVarP(&password, "password", "p", "",
		"Vault password (will prompt if not provided)")
	flags.StringVar(&keyEnv, "key-env", "",
		"Environment variable holding a hex or base64 master key")
	flags.StringVar(&logLevel, "log-level", "warn",
		"Log level (debug, info, warn, error)")
	flags.BoolVar(&logJSON, "log-json", false,
		"Write logs as JSON")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	log.SetLevel(level)
	log.SetOutput(os.Stderr)
	if logJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
