package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/l3aro/pyflow/internal/healthcheck"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on configuration and Graphviz",
	Long: `Checks the configuration and verifies that the Graphviz binary runs and
the output and cache directories are writable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}

		result, err := healthcheck.Check(commandContext(cmd), s.cfg, s.configPath)
		if err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if s.configPath != "" {
			fmt.Fprintf(out, "Using config: %s (%s)\n\n", s.configPath, result.SavedScope)
		} else {
			fmt.Fprintf(out, "Using config: defaults (run 'pyflow init' to create a config file)\n\n")
		}
		displayComponents(out, result)

		if !result.OK() {
			return fmt.Errorf("health check failed: one or more required components are not usable")
		}
		return nil
	},
}

func displayComponents(w io.Writer, result *healthcheck.HealthCheckResult) {
	for _, c := range result.Components() {
		fmt.Fprintf(w, "%s:\n", sectionHeaderStyle.Render(c.Name))
		if c.Detail != "" {
			fmt.Fprintf(w, "  Detail: %s\n", c.Detail)
		}
		fmt.Fprintf(w, "  Status: %s %s\n", formatStatusIcon(c), c.Status)
		if c.Error != "" {
			fmt.Fprintf(w, "  Error: %s\n", c.Error)
		}
	}
}

func formatStatusIcon(c healthcheck.ComponentStatus) string {
	switch c.Status {
	case healthcheck.StatusReady:
		return successStyle.Render("✓")
	case healthcheck.StatusMissing, healthcheck.StatusDisabled:
		return dimStyle.Render("○")
	case healthcheck.StatusError:
		if !c.Required {
			return warningStyle.Render("!")
		}
		return errorStyle.Render("✗")
	default:
		return "?"
	}
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}
