package main

import (
	"fmt"
	"io"
	"os"

	"github.com/absfs/credcrypt"
	"github.com/absfs/credcrypt/internal/objectstore"
	"github.com/spf13/cobra"
)

func newFetchCommand(state *cliState) *cobra.Command {
	var (
		bucket string
		output string
		raw    bool
	)
	cmd := &cobra.Command{
		Use:   "fetch KEY",
		Short: "Download an object, decrypting it when its metadata marks it encrypted.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			codec, err := cliCodec(state)
			if err != nil {
				return err
			}
			store, err := objectstore.Open(ctx, state.cfg.StoreOptions())
			if err != nil {
				return newCLIExitError(exitCodeConfig, err)
			}
			gateway, err := credcrypt.NewGateway(store, codec, state.cfg.Bucket)
			if err != nil {
				return err
			}

			ref := credcrypt.ObjectRef{Bucket: bucket, Key: args[0]}
			var body []byte
			if raw {
				file, err := gateway.DownloadRaw(ctx, ref)
				if err != nil {
					return err
				}
				body = file.Body
			} else {
				file, err := gateway.Download(ctx, ref)
				if err != nil {
					return err
				}
				body = file.Body
			}

			return writeOutput(cmd.OutOrStdout(), output, body)
		},
	}
	cmd.Flags().StringVar(&bucket, "bucket", "", "bucket, defaults to S3_BUCKET")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "skip decryption")
	return cmd
}

func writeOutput(stdout io.Writer, path string, body []byte) error {
	if path == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
