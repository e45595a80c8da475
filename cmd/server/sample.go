package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/ingest"
)

func newSampleCmd() *cobra.Command {
	var contentType string

	cmd := &cobra.Command{
		Use:   "sample <file>",
		Short: "Print the metadata and content sample extracted from a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd.OutOrStdout(), args[0], contentType)
		},
	}

	cmd.Flags().StringVarP(&contentType, "content-type", "t", "", "Declared content type (defaults to the type implied by the extension)")
	return cmd
}

func runSample(w io.Writer, path, contentType string) error {
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := ingest.New(ingest.Config{}).Ingest(filepath.Base(path), contentType, f)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
