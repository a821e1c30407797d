package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/valentindosimont/pomodoro/internal/app"
	"github.com/valentindosimont/pomodoro/internal/config"
	"github.com/valentindosimont/pomodoro/internal/cue"
)

var (
	Version = "dev"

	// Command-line configuration
	flags struct {
		config  string
		dataDir string
		log     string
		cue     string
		noSound bool
	}
)

var rootCmd = &cobra.Command{
	Use:   "pomodoro",
	Short: "A Pomodoro timer for the terminal",
	Long: `Pomodoro alternates focus sessions with short breaks and takes a long
break after every fourth focus session. Durations, sound and notification
preferences are remembered between runs.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runTimer,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print today's completed sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return app.PrintStats(cfg, time.Now(), cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", config.DefaultPath(),
		"Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&flags.dataDir, "data-dir", "d", "",
		"Directory for preferences and history (overrides the config file)")
	rootCmd.PersistentFlags().StringVarP(&flags.log, "log", "l", "",
		"Write logs to the specified file (overrides the config file)")
	rootCmd.Flags().StringVar(&flags.cue, "cue", "",
		fmt.Sprintf("Completion sound, one of %v", cue.IDs()))
	rootCmd.Flags().BoolVar(&flags.noSound, "no-sound", false,
		"Disable completion sounds")

	rootCmd.AddCommand(statsCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(flags.config)
	if err != nil {
		return cfg, err
	}
	if flags.dataDir != "" {
		cfg = cfg.WithDataDir(flags.dataDir)
	}
	if cmd.Flags().Changed("log") {
		cfg.LogPath = config.ExpandPath(flags.log)
	}
	return cfg, nil
}

func runTimer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if flags.cue != "" {
		if !cue.Known(flags.cue) {
			return fmt.Errorf("unknown cue %q, want one of %v", flags.cue, cue.IDs())
		}
		cfg.Cue = flags.cue
	}
	if flags.noSound {
		cfg.AudioBackend = cue.BackendNone
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer application.Close()

	return application.Run()
}
