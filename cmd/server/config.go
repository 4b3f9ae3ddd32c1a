package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind          string
	port          int
	catalogPath   string
	roundMinutes  int
	gcGrace       time.Duration
	sweepInterval time.Duration
	verbose       bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.roundMinutes < 1 || c.roundMinutes > 30 {
		return fmt.Errorf("invalid round-minutes (must be between 1-30 inclusive): %d", c.roundMinutes)
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SPYFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "spyfall-server",
		Short:         "Coordinates rounds of Spyfall across independently connected devices.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: SPYFALL_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: SPYFALL_PORT)")
	fs.StringVar(&cfg.catalogPath, "catalog", "locations.csv", "path to the location/role catalog CSV (env: SPYFALL_CATALOG)")
	fs.IntVar(&cfg.roundMinutes, "round-minutes", 8, "default round timer length in minutes (env: SPYFALL_ROUND_MINUTES)")
	fs.DurationVar(&cfg.gcGrace, "gc-grace", 5*time.Minute, "time before empty rooms are collected (env: SPYFALL_GC_GRACE)")
	fs.DurationVar(&cfg.sweepInterval, "sweep-interval", 30*time.Second, "how often the room GC sweep runs (env: SPYFALL_SWEEP_INTERVAL)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: SPYFALL_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("spyfall-server v{{.Version}}\n")

	return cmd
}
