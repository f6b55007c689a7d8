package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/l3aro/pyflow/internal/config"
	"github.com/l3aro/pyflow/internal/healthcheck"
	"github.com/l3aro/pyflow/pkg/render"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize pyflow configuration interactively",
	Long: `Guides you through setting up pyflow configuration step by step.
Creates a config file with the entry function, output and cache settings,
then checks that Graphviz and the chosen directories are usable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd)
	},
}

func runInit(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	labelWidth := strconv.Itoa(cfg.LabelWidth)

	// === SECTION 1: Simulation ===
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Entry function").
				Description("Simulation starts from this function").
				Placeholder(cfg.EntryFunction).
				Value(&cfg.EntryFunction).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("entry function is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Label width").
				Description("Longer condition and loop labels are truncated").
				Placeholder(labelWidth).
				Value(&labelWidth).
				Validate(func(s string) error {
					if n, err := strconv.Atoi(s); err != nil || n < 4 {
						return fmt.Errorf("label width must be a number of at least 4")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}
	cfg.LabelWidth, _ = strconv.Atoi(labelWidth)

	// === SECTION 2: Rendering ===
	formatOptions := make([]huh.Option[string], 0, len(render.Formats))
	for _, f := range render.Formats {
		formatOptions = append(formatOptions, huh.NewOption(f, f))
	}
	rankOptions := make([]huh.Option[string], 0, len(render.RankDirs))
	for _, d := range render.RankDirs {
		rankOptions = append(rankOptions, huh.NewOption(d, d))
	}

	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Output format").
				Description("png, svg and pdf need the Graphviz dot binary").
				Options(formatOptions...).
				Value(&cfg.Format),
			huh.NewSelect[string]().
				Title("Graph direction").
				Options(rankOptions...).
				Value(&cfg.RankDir),
			huh.NewInput().
				Title("Output directory").
				Placeholder(cfg.OutputDir).
				Value(&cfg.OutputDir),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	if cfg.Format != render.FormatDOT && cfg.Format != render.FormatMermaid {
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Graphviz binary").
					Placeholder(cfg.DotBinary).
					Value(&cfg.DotBinary),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
	}

	// === SECTION 3: Cache ===
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Analysis cache").
				Description("Reuse simulation results for unchanged files?").
				Affirmative("Yes").
				Negative("No").
				Value(&cfg.CacheEnabled),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	// === SECTION 4: Config Location ===
	var saveLocationChoice string
	form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save Configuration").
				Description("Where to save the configuration file?").
				Options(
					huh.NewOption("Project (./.pyflow/config.yaml)", "project"),
					huh.NewOption("Global (~/.pyflow/config.yaml)", "global"),
				).
				Value(&saveLocationChoice),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("interactive prompt failed: %w", err)
	}

	configPath := config.ProjectConfigFilePath()
	if saveLocationChoice == "global" {
		configPath = config.GlobalConfigFilePath()
	}

	if _, err := os.Stat(configPath); err == nil {
		var overwrite bool
		form = huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title("Config file exists").
					Description(fmt.Sprintf("Overwrite existing config at %s?", configPath)).
					Affirmative("Overwrite").
					Negative("Cancel").
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return fmt.Errorf("interactive prompt failed: %w", err)
		}
		if !overwrite {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\n=== Configuration Preview ===")
	fmt.Fprintf(out, "Config path: %s\n", configPath)
	fmt.Fprintf(out, "Entry function: %s\n", cfg.EntryFunction)
	fmt.Fprintf(out, "Label width: %d\n", cfg.LabelWidth)
	fmt.Fprintf(out, "Format: %s (%s)\n", cfg.Format, cfg.RankDir)
	fmt.Fprintf(out, "Output directory: %s\n", cfg.OutputDir)
	fmt.Fprintf(out, "Cache: %v\n", cfg.CacheEnabled)
	fmt.Fprintln(out, "================================")

	if err := cfg.Save(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(out, "Configuration saved to: %s\n", configPath)

	// === SECTION 5: Health Check ===
	fmt.Fprintln(out, "\n=== Running Health Check ===")
	loadedCfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading saved config: %w", err)
	}
	result, err := healthcheck.Check(commandContext(cmd), loadedCfg, configPath)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	absPath, _ := filepath.Abs(configPath)
	fmt.Fprintf(out, "\nConfig Scope: %s\n", result.SavedScope)
	fmt.Fprintf(out, "Config Path: %s\n\n", absPath)
	displayComponents(out, result)

	fmt.Fprintln(out, "\n=== Initialization Complete ===")
	return nil
}

func init() {
	RootCmd.AddCommand(initCmd)
}
