package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/absfs/credcrypt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEncryptCommand(state *cliState) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "encrypt FILE...",
		Short: "Encrypt credential files, writing NAME.enc next to each or into -o DIR.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				if err := credcrypt.CheckUpload(filepath.Base(name)); err != nil {
					return fmt.Errorf("%s: %w", name, err)
				}
			}
			codec, err := cliCodec(state)
			if err != nil {
				return err
			}
			return transformFiles(args, outDir, codec.EncryptAll, credcrypt.EncryptedName)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory")
	return cmd
}

func newDecryptCommand(state *cliState) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "decrypt FILE...",
		Short: "Decrypt blobs produced by encrypt or the HTTP API.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, err := cliCodec(state)
			if err != nil {
				return err
			}
			return transformFiles(args, outDir, codec.DecryptAll, credcrypt.DecryptedName)
		},
	}
	cmd.Flags().StringVarP(&outDir, "output", "o", "", "output directory")
	return cmd
}

func cliCodec(state *cliState) (*credcrypt.Codec, error) {
	codec, key, err := credcrypt.NewCodecFromProvider(state.cfg.KeyProvider())
	if err != nil {
		return nil, newCLIExitError(exitCodeConfig, err)
	}
	zap.L().Debug("using key", zap.Stringer("fingerprint", key))
	return codec, nil
}

type batchFunc func([][]byte, credcrypt.ParallelConfig) ([][]byte, error)

// transformFiles reads every file, runs them through fn as one batch and
// writes the results. Nothing is written unless the whole batch succeeds and
// every input has its own destination.
func transformFiles(paths []string, outDir string, fn batchFunc, rename func(string) string) error {
	dsts := make([]string, len(paths))
	seen := make(map[string]string, len(paths))
	for i, p := range paths {
		dir := outDir
		if dir == "" {
			dir = filepath.Dir(p)
		}
		dsts[i] = filepath.Join(dir, rename(filepath.Base(p)))
		if prev, ok := seen[dsts[i]]; ok {
			return fmt.Errorf("%s and %s would both be written to %s", prev, p, dsts[i])
		}
		seen[dsts[i]] = p
	}

	inputs := make([][]byte, len(paths))
	for i, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		inputs[i] = data
	}

	outputs, err := fn(inputs, credcrypt.DefaultParallelConfig())
	if err != nil {
		var batchErr *credcrypt.BatchError
		if errors.As(err, &batchErr) {
			return fmt.Errorf("%s: %w", paths[batchErr.Index], batchErr.Err)
		}
		return err
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return err
		}
	}

	for i, p := range paths {
		if err := os.WriteFile(dsts[i], outputs[i], 0o600); err != nil {
			return err
		}
		zap.L().Info("wrote file", zap.String("src", p), zap.String("dst", dsts[i]), zap.Int("size", len(outputs[i])))
	}
	return nil
}
