package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/jointreplay"
	logAdapter "github.com/bft-labs/jointreplay/internal/adapters/log"
	"github.com/bft-labs/jointreplay/internal/cliconfig"
)

const helpDescription = `
Replay recorded robot joint positions against URDF joint configurations.

Highlights:
  - Loads a recorded snapshot array, downsamples it and plays it back at the recorder's cadence.
  - Maps every part's position vector onto named URDF joints through a YAML or TOML table.
  - Streams frames to browser viewers over WebSocket and accepts play/pause/seek commands.
  - Reports per-joint movement statistics and mapping mismatches.
`

var exampleUsage = strings.TrimSpace(`
  jointreplay info --data data/robot_status1.data.json
  jointreplay analyze --data data/robot_status1.data.json --compare data/robot_status2.data.json
  jointreplay serve --data data/robot_status1.data.json --mapping mapping.yaml --watch-mapping --autoplay
`)

// cli carries the resolved configuration into subcommands.
type cli struct {
	cfg     cliconfig.Config
	cfgPath string
	changed map[string]bool
	log     zerolog.Logger
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	c := &cli{
		cfg: cliconfig.DefaultConfig(),
		log: cliconfig.Logger(),
	}

	root := &cobra.Command{
		Use:               "jointreplay",
		Short:             "Replay recorded robot joint positions",
		Long:              strings.TrimSpace(helpDescription),
		Example:           exampleUsage,
		Version:           fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.load,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgPath, "config", "", "path to config file (default: $HOME/.jointreplay/config.toml)")
	pf.StringVar(&c.cfg.DataFile, "data", c.cfg.DataFile, "recorded snapshot file (JSON array)")
	pf.StringVar(&c.cfg.MappingFile, "mapping", c.cfg.MappingFile, "part to URDF joint mapping table (YAML, TOML or JSON; built-in table when empty)")
	pf.IntVar(&c.cfg.Downsample, "downsample", c.cfg.Downsample, "keep every Nth recorded snapshot")
	pf.Float64Var(&c.cfg.SourceRateHz, "source-rate", c.cfg.SourceRateHz, "recording rate in Hz")
	pf.Float64Var(&c.cfg.Speed, "speed", c.cfg.Speed, "playback speed multiplier (0.1 to 5.0)")
	pf.DurationVar(&c.cfg.JoinTimeout, "join-timeout", c.cfg.JoinTimeout, "how long pause waits for the playback worker")
	pf.StringVar(&c.cfg.LogLevel, "log-level", c.cfg.LogLevel, "log level (debug, info, warn, error)")
	pf.BoolVar(&c.cfg.WatchMapping, "watch-mapping", c.cfg.WatchMapping, "reload the mapping file when it changes")

	root.AddCommand(
		c.infoCommand(),
		c.validateCommand(),
		c.analyzeCommand(),
		c.serveCommand(),
		c.playCommand(),
	)

	if err := root.Execute(); err != nil {
		c.log.Error().Err(err).Msg("jointreplay")
		os.Exit(1)
	}
}

// load applies config file, then environment, then validates. Flags set on
// the command line win over both.
func (c *cli) load(cmd *cobra.Command, args []string) error {
	cfgFile := c.cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	c.changed = map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { c.changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(&c.cfg, fc, c.changed); err != nil {
			return err
		}
	}

	if err := cliconfig.ApplyEnvConfig(&c.cfg, c.changed); err != nil {
		return err
	}

	if err := c.cfg.Validate(); err != nil {
		return err
	}

	log, err := cliconfig.LoggerWithLevel(c.cfg.LogLevel)
	if err != nil {
		return err
	}
	c.log = log
	c.log.Debug().Interface("config", c.cfg).Msg("configuration")
	return nil
}

// open builds a Replay from the resolved configuration.
func (c *cli) open(opts ...jointreplay.Option) (*jointreplay.Replay, error) {
	return c.openWith(c.cfg.DataFile, c.cfg.Downsample, opts...)
}

func (c *cli) openWith(dataFile string, downsample int, opts ...jointreplay.Option) (*jointreplay.Replay, error) {
	libCfg := jointreplay.Config{
		DataFile:     dataFile,
		MappingFile:  c.cfg.MappingFile,
		Downsample:   downsample,
		SourceRateHz: c.cfg.SourceRateHz,
		Speed:        c.cfg.Speed,
		JoinTimeout:  c.cfg.JoinTimeout,
		WatchMapping: c.cfg.WatchMapping,
	}
	opts = append([]jointreplay.Option{
		jointreplay.WithLogger(logAdapter.NewZerologAdapterWithLogger(c.log)),
	}, opts...)

	r, err := jointreplay.New(libCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dataFile, err)
	}
	return r, nil
}
