package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	storagePath string
	backendName string
	provider    string
	configPath  string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gujjar-gpt",
	Short: "Chat with GujjarGPT from your terminal",
	Long: `GujjarGPT is a terminal chat client for Google's Gemini models.

Conversations are saved per profile and can be resumed, exported or deleted.
Start a message with /imagine to generate an image instead of a text reply.

Features:
  • Multi-turn chat with web-grounded answers and cited sources
  • Image generation with /imagine
  • Image attachments for questions about a picture
  • Saved sessions per profile (guest sessions are never saved)
  • Export in multiple formats (JSONL, Markdown, YAML, JSON)

Quick Start:
  gujjar-gpt signup --name "Asha" --email asha@example.com --password ...
  gujjar-gpt chat                          # Interactive chat
  gujjar-gpt send "What is the capital of Rajasthan?"
  gujjar-gpt send "/imagine a camel at sunset"
  gujjar-gpt list                          # List saved sessions

Set GUJJAR_GPT_API_KEY (or GEMINI_API_KEY) before chatting.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom storage directory (default: per-user application directory)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Storage backend: sqlite, bolt, redis or memory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "AI provider: gemini, openai or mock (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default: <storage>/config.yaml)")

	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	rootCmd.SilenceUsage = true
}
