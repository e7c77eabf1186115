package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/sponsorwatch/pkg/catalog"
	"github.com/Sternrassler/sponsorwatch/pkg/config"
	"github.com/Sternrassler/sponsorwatch/pkg/logging"
	"github.com/Sternrassler/sponsorwatch/pkg/metrics"
	"github.com/Sternrassler/sponsorwatch/pkg/poller"
	"github.com/Sternrassler/sponsorwatch/pkg/sink"
)

func newRootCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "sponsorwatch",
		Short: "Print sponsored games as they show up",
		Long: `sponsorwatch polls the "Sponsored" sort of the games catalog and prints
every place the first time it is seen, as a clickable link when the terminal
supports it and as "name > placeId" otherwise.

The session cookie is read from ROBLOSECURITY (environment or .env file).
Without --limit it runs until interrupted.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.IntP(config.KeyLimit, "l", 0, "maximum number of unique places to show (default: unlimited)")
	flags.IntP(config.KeyRegionID, "r", 0, "country region id to use instead of the sort's default")

	flags.String(config.KeyConfigFile, "", "config file (default is $HOME/.sponsorwatch.yaml)")
	flags.String(config.KeyBaseURL, catalog.DefaultBaseURL, "games catalog base URL")
	flags.String(config.KeySortName, poller.DefaultSortName, "name of the sort to poll")
	flags.Duration(config.KeyTimeout, 0, "per-request timeout (0 waits forever)")
	flags.String(config.KeyLogLevel, "info", "log level (debug, info, warn, error)")
	flags.Bool(config.KeyLogPretty, false, "human readable logs on stderr")
	flags.String(config.KeyMetricsAddr, "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.String(config.KeyRedisAddr, "", "also publish discoveries to a Redis stream at this address")
	flags.String(config.KeyRedisStream, sink.DefaultStream, "Redis stream name")
	flags.Int64(config.KeyRedisMaxLen, 0, "approximate Redis stream length cap (0 is unbounded)")
	flags.StringSlice(config.KeyKafkaBrokers, nil, "also publish discoveries to these Kafka brokers")
	flags.String(config.KeyKafkaTopic, "sponsorwatch.discoveries", "Kafka topic")

	if err := v.BindPFlags(flags); err != nil {
		panic(fmt.Sprintf("bind flags: %v", err))
	}

	return cmd
}

// run wires the catalog client, sinks and poll loop and blocks until the
// loop ends. An interrupt is a clean exit.
func run(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Pretty = logCfg.Pretty || cfg.LogPretty
	logging.Setup(logCfg)
	logger := logging.NewLogger("cli")

	client, err := catalog.New(cfg.CatalogConfig())
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}

	out, err := buildSinks(ctx, cfg, stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close sinks")
		}
	}()

	p, err := poller.New(client, out, cfg.PollerConfig())
	if err != nil {
		return fmt.Errorf("create poller: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	metricsCtx, stopMetrics := context.WithCancel(gctx)
	defer stopMetrics()

	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return metrics.Serve(metricsCtx, cfg.MetricsAddr)
		})
	}

	g.Go(func() error {
		defer stopMetrics()
		_, err := p.Run(gctx)
		return err
	})

	err = g.Wait()
	if err != nil && errors.Is(err, context.Canceled) && ctx.Err() != nil {
		logger.Info().Int("seen", p.Seen()).Msg("Interrupted")
		return nil
	}
	return err
}

// buildSinks returns the terminal sink plus any configured publishers.
func buildSinks(ctx context.Context, cfg *config.Config, stdout io.Writer) (sink.Multi, error) {
	out := sink.Multi{sink.NewTerminal(stdout, hyperlinkCapability(stdout))}

	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		stream, err := sink.NewRedisStream(redisClient, cfg.RedisStream, cfg.RedisMaxLen)
		if err != nil {
			redisClient.Close()
			return nil, err
		}
		out = append(out, stream)
	}

	if len(cfg.KafkaBrokers) > 0 {
		k, err := sink.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			out.Close()
			return nil, err
		}
		out = append(out, k)
	}

	return out, nil
}

// hyperlinkCapability probes w when it is a file; other writers get plain
// text.
func hyperlinkCapability(w io.Writer) sink.CapabilityFunc {
	f, ok := w.(*os.File)
	if !ok {
		return nil
	}
	return func() bool { return sink.SupportsHyperlinks(f) }
}
