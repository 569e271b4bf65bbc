package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/gujjar-gpt/internal"
	"github.com/iksnae/gujjar-gpt/internal/gateway"
	"github.com/spf13/cobra"
)

var (
	healthcheckVerbose bool
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

const healthProbeKey = "gujjar-gpt-healthcheck"

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check storage, login and AI provider configuration",
	Long: `Check the health of gujjar-gpt by verifying:
  • Storage path detection and config loading
  • Storage backend read/write access
  • Login state and saved sessions
  • AI provider configuration

This command is useful for debugging setup issues.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintln(out, sectionStyle.Render("🔍 GujjarGPT Health Check"))
		_, _ = fmt.Fprintln(out)

		// Step 1: paths and config
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 1: Loading configuration..."))
		a, err := openApp()
		if err != nil {
			_, _ = fmt.Fprintln(out, failStyle.Render("❌ Failed to open storage:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		defer a.Close()
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Configuration loaded"))
		if healthcheckVerbose {
			_, _ = fmt.Fprintf(out, "   Base path: %s\n", a.paths.BasePath)
			_, _ = fmt.Fprintf(out, "   Config file: %s\n", a.paths.ConfigFile)
			_, _ = fmt.Fprintf(out, "   Backend: %s\n", a.cfg.Storage.Backend)
			_, _ = fmt.Fprintf(out, "   Provider: %s\n", a.cfg.Provider)
		}
		_, _ = fmt.Fprintln(out)

		// Step 2: storage round trip
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 2: Testing storage access..."))
		if err := probeStore(a.store); err != nil {
			_, _ = fmt.Fprintln(out, failStyle.Render("❌ Storage is not writable:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Storage read/write OK"))
		_, _ = fmt.Fprintln(out)

		// Step 3: login
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 3: Checking login..."))
		profile := a.profiles.Current()
		switch {
		case profile == nil:
			_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Not logged in"))
			_, _ = fmt.Fprintln(out, "   Run 'gujjar-gpt signup' or 'gujjar-gpt login --guest'")
		case profile.IsGuest():
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Logged in as guest"))
		default:
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Logged in as %s", profile.Name)))
			_, _ = fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✅ Found %d saved session(s)", len(a.sessions.List()))))
		}
		_, _ = fmt.Fprintln(out)

		// Step 4: provider
		_, _ = fmt.Fprintln(out, infoStyle.Render("Step 4: Checking AI provider..."))
		providerErr := checkProvider(context.Background(), a.cfg)
		if providerErr != nil {
			_, _ = fmt.Fprintln(out, failStyle.Render("❌ "+providerErr.Error()))
		} else {
			_, _ = fmt.Fprintln(out, successStyle.Render("✅ Provider configured"))
		}
		_, _ = fmt.Fprintln(out)

		printHealthSummary(out, profile, providerErr)
		if providerErr != nil {
			return fmt.Errorf("health check failed: %w", providerErr)
		}
		return nil
	},
}

// probeStore writes, reads and removes a marker key
func probeStore(store internal.Store) error {
	if err := store.Set(healthProbeKey, "ok"); err != nil {
		return err
	}
	v, ok, err := store.Get(healthProbeKey)
	if err != nil {
		return err
	}
	if !ok || v != "ok" {
		return errors.New("written value could not be read back")
	}
	return store.Remove(healthProbeKey)
}

// checkProvider builds the gateway and starts a conversation without sending anything
func checkProvider(ctx context.Context, cfg *internal.Config) error {
	gw, err := gateway.New(ctx, cfg)
	if err != nil {
		return err
	}
	_, err = gw.NewContext(ctx, nil)
	return err
}

func printHealthSummary(out io.Writer, profile *internal.UserProfile, providerErr error) {
	_, _ = fmt.Fprintln(out, sectionStyle.Render("📊 Summary"))
	_, _ = fmt.Fprintln(out)
	switch {
	case providerErr != nil:
		_, _ = fmt.Fprintln(out, failStyle.Render("❌ Health check failed"))
		_, _ = fmt.Fprintln(out, "   • Set GUJJAR_GPT_API_KEY or configure another provider")
	case profile == nil:
		_, _ = fmt.Fprintln(out, warningStyle.Render("⚠️  Ready, but not logged in"))
	default:
		_, _ = fmt.Fprintln(out, successStyle.Render("✅ Health check passed!"))
	}
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
	healthcheckCmd.Flags().BoolVar(&healthcheckVerbose, "details", false, "Show detailed diagnostic information")
}
