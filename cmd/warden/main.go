package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"

	"github.com/wardenhq/warden/pkg/alert"
	"github.com/wardenhq/warden/pkg/bot"
	"github.com/wardenhq/warden/pkg/config"
	"github.com/wardenhq/warden/pkg/gate"
	"github.com/wardenhq/warden/pkg/host"
	"github.com/wardenhq/warden/pkg/issuance"
	"github.com/wardenhq/warden/pkg/log"
	"github.com/wardenhq/warden/pkg/metrics"
	"github.com/wardenhq/warden/pkg/proxy"
	"github.com/wardenhq/warden/pkg/sampler"
	"github.com/wardenhq/warden/pkg/speedtest"
	"github.com/wardenhq/warden/pkg/storage"
	"github.com/wardenhq/warden/pkg/vpn"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Warden - chat-operated server administration console",
	Long: `Warden administers a small self-hosted server through a single
authorized Telegram chat: host metrics sampling and charts, threshold
alerts, VPN peer status, speed tests, and human-approved issuance of
VPN client credentials.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Warden version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Warden daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			// Missing bot token is the one fatal configuration error
			return err
		}

		log.Init(log.Config{
			Level:      log.Level(cfg.Log.Level),
			JSONOutput: cfg.Log.Format == "json",
		})
		logger := log.WithComponent("main")

		if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
			return fmt.Errorf("failed to create data dir: %w", err)
		}

		store, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer store.Close()

		api, err := tgbotapi.NewBotAPI(cfg.BotToken)
		if err != nil {
			return fmt.Errorf("failed to connect to telegram: %w", err)
		}

		client := bot.NewClient(api)
		operatorGate := gate.New(store, cfg.AllowedChatID)
		provider := host.NewSystemProvider()

		policy := alert.NewPolicy(
			alert.Thresholds{
				CPUPct:  cfg.Alert.CPUPct,
				MemPct:  cfg.Alert.MemPct,
				NetMbps: cfg.Alert.NetMbps,
			},
			cfg.AlertCooldown(),
			operatorGate,
			client,
		)

		proxyManager := proxy.NewManager(cfg.Issuance.ConfigPath, cfg.Issuance.Container)
		workflow := issuance.NewWorkflow(store, operatorGate, client, proxyManager, issuance.Options{
			Enabled:    cfg.Issuance.Enabled,
			InboundTag: cfg.Issuance.InboundTag,
			ClientFlow: cfg.Issuance.Flow,
			Link: proxy.LinkParams{
				Host:      cfg.Issuance.Host,
				Port:      cfg.Issuance.Port,
				Flow:      cfg.Issuance.Flow,
				Security:  cfg.Issuance.Security,
				SNI:       cfg.Issuance.SNI,
				PublicKey: cfg.Issuance.PublicKey,
				ShortID:   cfg.Issuance.ShortID,
				Name:      cfg.Issuance.LinkName,
			},
		})

		metrics.Register()
		var metricsServer *metrics.Server
		if cfg.MetricsAddr != "" {
			metricsServer = metrics.NewServer(cfg.MetricsAddr)
			go func() {
				if err := metricsServer.Start(); err != nil {
					logger.Error().Err(err).Msg("metrics server failed")
				}
			}()
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics listener started")
		}

		samp := sampler.New(store, provider, policy, cfg.SampleInterval(), cfg.NetWindow(), cfg.Sample.DiskPath)
		samp.Start()
		logger.Info().Dur("interval", cfg.SampleInterval()).Msg("sampler started")

		b := bot.New(api, client, store, operatorGate, workflow,
			vpn.NewInspector(cfg.WGContainer),
			speedtest.NewRunner(cfg.SpeedtestServerID),
			provider,
			bot.Options{
				ChartDefaultHours: cfg.Chart.DefaultHours,
				NetWindow:         cfg.NetWindow(),
				DiskPath:          cfg.Sample.DiskPath,
			})

		ctx, cancel := context.WithCancel(context.Background())
		go b.Run(ctx)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		logger.Info().Msg("shutting down")
		cancel()
		samp.Stop()
		if metricsServer != nil {
			metricsServer.Stop()
		}
		return nil
	},
}
