package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JPauloFavarettoSilva/FileExplorerGemini/internal/config"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fileexplorer",
		Short:         "File ingestion service with Gemini summaries",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			// .env is optional
			_ = godotenv.Load()
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSampleCmd())
	return rootCmd
}

// defaultConfigPath returns the config file next to the executable, falling
// back to the working directory.
func defaultConfigPath() string {
	exePath, err := os.Executable()
	if err != nil {
		return config.DefaultFileName
	}
	return filepath.Join(filepath.Dir(exePath), config.DefaultFileName)
}
