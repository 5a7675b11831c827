package main

import (
	"fmt"

	"github.com/absfs/osfs"
	"github.com/spf13/cobra"

	"github.com/absfs/vaultfs"
)

var initCmd = &cobra.Command{
	Use:   "init <dir>",
	Short: "Create a new vault",
	Long: `Init writes a vault descriptor into dir and creates its data
directory. The password (or --key-env key) is needed to unlock the
vault later.`,
	Example: `  vaultfs init ./secrets
  vaultfs init ./secrets --cipher chacha20-poly1305 --chunk-size 65536`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

var (
	initCipher    string
	initChunkSize int
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initCipher, "cipher", "auto",
		"Content cipher (aes-256-gcm, chacha20-poly1305)")
	initCmd.Flags().IntVar(&initChunkSize, "chunk-size", vaultfs.DefaultChunkSize,
		"Plaintext bytes per encrypted chunk")
}

func runInit(cmd *cobra.Command, args []string) error {
	root, err := localPath(args[0])
	if err != nil {
		return err
	}
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	kp, err := keyProvider(true)
	if err != nil {
		return err
	}
	fs, err := osfs.NewFS()
	if err != nil {
		return fmt.Errorf("open local filesystem: %w", err)
	}

	v, err := vaultfs.CreateVault(vaultfs.NewSession(fs), root, kp, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created vault %s at %s (%s, %d byte chunks)\n",
		v.ID(), v.Root(), v.Cryptor().Suite(), v.Cryptor().ChunkSize())
	return nil
}

func initConfig() (*vaultfs.Config, error) {
	suite, err := vaultfs.ParseCipherSuite(initCipher)
	if err != nil {
		return nil, err
	}
	cfg := vaultfs.DefaultConfig()
	cfg.Cipher = suite
	cfg.ChunkSize = initChunkSize
	cfg.Logger = log
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
