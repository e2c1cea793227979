package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/semo00000/champ-electrostatique/internal/config"
	"github.com/semo00000/champ-electrostatique/internal/gui"
	"github.com/semo00000/champ-electrostatique/internal/observability"
	"github.com/semo00000/champ-electrostatique/internal/storage"
)

var (
	cfgFile   string
	storeDir  string
	seed      int64
	sceneFile string
	heatmap   string
	quality   int

	v        *viper.Viper
	settings *config.Settings
)

// main registers the commands and runs the desktop window when no
// subcommand is given.
func main() {
	rootCmd := newRootCmd()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	observability.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "champ",
		Short:         "interactive 2D electrostatic field lab",
		SilenceUsage:  true,
		Args:          cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadSettings(cmd)
		},
		RunE: runGUI,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default ./champ.yaml or ~/.config/champ/champ.yaml)")
	pf.StringVar(&storeDir, "store", "", "session directory (overrides store_dir)")
	pf.Int64Var(&seed, "seed", 1, "seed for the random preset, particles and arcs")
	pf.StringVar(&sceneFile, "scene", "", "yaml scene file to load instead of a preset")
	pf.StringVar(&heatmap, "heatmap", "", "heatmap mode (off, potential, magnitude, direction, energy, chromatic)")
	pf.IntVar(&quality, "quality", config.AutoQuality, "quality tier 0-3, -1 for detected")

	guiCmd := &cobra.Command{
		Use:   "gui [preset]",
		Short: "open the desktop window",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runGUI,
	}

	rootCmd.AddCommand(
		guiCmd,
		newRenderCmd(),
		newSampleCmd(),
		newProfileCmd(),
		newSVGCmd(),
		newChargesCmd(),
		newTUICmd(),
		newSaveCmd(),
		newListCmd(),
		newShowCmd(),
		newPresetsCmd(),
		newHWCmd(),
	)
	return rootCmd
}

// loadSettings reads config and environment, applies the persistent flags
// that were set, and starts the logger.
func loadSettings(cmd *cobra.Command) error {
	var err error
	v, err = config.NewViper(cfgFile)
	if err != nil {
		observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "champ"})
		return err
	}
	flags := map[string]string{"store": "store_dir", "heatmap": "heatmap", "quality": "quality"}
	for flag, key := range flags {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	settings, err = config.NewSettingsFromViper(v)
	if err != nil {
		observability.InitializeLogger(config.LoggerConfig{Level: "info", Format: "console", ServiceName: "champ"})
		return err
	}
	observability.InitializeLogger(settings.Logger)
	observability.GetLogger().Debug("configuration loaded", zap.String("file", v.ConfigFileUsed()))
	return nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(settings.StoreDir)
	if err := st.Init(); err != nil {
		return nil, fmt.Errorf("opening session store: %w", err)
	}
	return st, nil
}

func runGUI(cmd *cobra.Command, args []string) error {
	opt := gui.Options{
		Settings: settings,
		Preset:   presetArg(args),
		Seed:     seed,
		Log:      observability.GetLogger(),
	}
	if sceneFile != "" {
		f, err := config.LoadScene(sceneFile)
		if err != nil {
			return err
		}
		opt.Scene = f
	}
	st, err := openStore()
	if err != nil {
		return err
	}
	opt.Store = st
	return gui.Run(cmd.Context(), opt)
}
