package main

import (
	"encoding/hex"
	"fmt"

	"github.com/absfs/credcrypt"
	"github.com/spf13/cobra"
)

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a random 64 character hex key for ENCRYPTION_SECRET_KEY.",
		Args:  cobra.NoArgs,
		// No configuration is needed to generate a key.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			key := credcrypt.GenerateKey()
			_, err := fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(key.Bytes()))
			return err
		},
	}
}
