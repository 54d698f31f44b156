package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lantian699/jellyfin-android/internal/adapters/mqttserver"
	"github.com/lantian699/jellyfin-android/internal/jellyfin"
	"github.com/lantian699/jellyfin-android/internal/jfd"
	"github.com/lantian699/jellyfin-android/internal/modules/browser"
	embeddedmqtt "github.com/lantian699/jellyfin-android/internal/modules/embedded_mqtt"
	"github.com/lantian699/jellyfin-android/internal/playback"
	"github.com/lantian699/jellyfin-android/internal/players/cast"
	"github.com/lantian699/jellyfin-android/internal/players/local"
	"github.com/lantian699/jellyfin-android/pkg/jf"
)

func main() {
	var (
		configPath  string
		broker      string
		identity    string
		topicBase   string
		logLevel    string
		printConfig bool
		dryRun      bool
	)

	defaultConfig, err := jfd.DefaultConfigPath()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	flag.StringVar(&configPath, "config", defaultConfig, "config file path")
	flag.StringVar(&broker, "broker", "", "MQTT broker URL override")
	flag.StringVar(&identity, "identity", "", "server identity override")
	flag.StringVar(&topicBase, "topic-base", "", "topic base override")
	flag.StringVar(&logLevel, "log-level", "", "log level override")
	flag.BoolVar(&printConfig, "print-config", false, "print resolved config and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "validate config and exit")
	flag.Parse()

	cfg, err := jfd.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	applyOverrides(&cfg, broker, identity, topicBase, logLevel)

	if printConfig {
		fmt.Fprintf(os.Stdout, "broker=%s identity=%s topic_base=%s log_level=%s\n",
			cfg.Server.Broker, cfg.Server.Identity, cfg.Server.TopicBase, cfg.Server.LogLevel)
		return
	}
	if dryRun {
		return
	}

	logger := jfd.NewLogger(jfd.LogConfig{Level: cfg.Server.LogLevel})
	zlog, err := moduleLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	skipEmbedded := false
	if cfg.Modules.EmbeddedMQTT.Enabled && cfg.Server.Broker == embeddedBrokerURL(cfg) {
		if err := startEmbeddedBroker(ctx, cfg, zlog, cancel); err != nil {
			logger.Error("embedded mqtt failed", "error", err)
			os.Exit(1)
		}
		skipEmbedded = true
	}

	if cfg.Server.Broker == "" {
		logger.Error("broker is required")
		os.Exit(1)
	}
	logger.Info("jfd starting",
		"broker", cfg.Server.Broker,
		"identity", cfg.Server.Identity,
		"topic_base", cfg.Server.TopicBase,
		"log_level", cfg.Server.LogLevel,
	)

	client, err := mqttserver.NewClient(mqttserver.Options{
		BrokerURL: cfg.Server.Broker,
		ClientID:  fmt.Sprintf("jfd-%d", time.Now().UnixNano()),
		Username:  cfg.Server.Auth.User,
		Password:  cfg.Server.Auth.Pass,
		TLSCA:     cfg.Server.TLS.CA,
		TLSCert:   cfg.Server.TLS.Cert,
		TLSKey:    cfg.Server.TLS.Key,
		Timeout:   2 * time.Second,
		Logger:    zlog,
	})
	if err != nil {
		logger.Error("mqtt connection failed", "error", err)
		os.Exit(1)
	}

	modules, err := buildModules(cfg, client, zlog, skipEmbedded)
	if err != nil {
		logger.Error("failed to build modules", "error", err)
		os.Exit(1)
	}

	supervisor := jfd.Supervisor{Logger: logger}
	if err := supervisor.Run(ctx, modules); err != nil {
		logger.Error("supervisor error", "error", err)
		os.Exit(1)
	}
}

func applyOverrides(cfg *jfd.Config, broker string, identity string, topicBase string, logLevel string) {
	if broker != "" {
		cfg.Server.Broker = broker
	}
	if identity != "" {
		cfg.Server.Identity = identity
	}
	if topicBase != "" {
		cfg.Server.TopicBase = topicBase
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	if cfg.Server.TopicBase == "" {
		cfg.Server.TopicBase = jf.BaseTopic
	}
	if cfg.Server.Broker == "" && cfg.Modules.EmbeddedMQTT.Enabled {
		cfg.Server.Broker = embeddedBrokerURL(*cfg)
	}
}

func moduleLogger(level string) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if lvl, err := zapcore.ParseLevel(level); err == nil && level != "" {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}

func buildModules(cfg jfd.Config, client *mqttserver.Client, logger *zap.Logger, skipEmbedded bool) ([]jfd.ModuleRunner, error) {
	modules := []jfd.ModuleRunner{}

	if cfg.Modules.EmbeddedMQTT.Enabled && !skipEmbedded {
		mod, err := newEmbeddedBroker(cfg, logger)
		if err != nil {
			return nil, err
		}
		modules = append(modules, jfd.ModuleRunner{
			Name: "embedded_mqtt",
			Run:  mod.Run,
		})
	}

	if cfg.Modules.Browser.Enabled {
		localDriver, err := local.NewDriver(cfg.Modules.PlayerLocal.Pipeline, cfg.Modules.PlayerLocal.Device)
		if err != nil {
			return nil, fmt.Errorf("local player: %w", err)
		}
		castDriver, err := cast.NewDriver(
			cfg.Modules.PlayerCast.BaseURL,
			cfg.Modules.PlayerCast.Username,
			cfg.Modules.PlayerCast.Password,
			time.Duration(cfg.Modules.PlayerCast.TimeoutMS)*time.Millisecond,
		)
		if err != nil {
			return nil, fmt.Errorf("cast player: %w", err)
		}

		catalog := jellyfin.NewClient(jellyfin.Config{
			BaseURL:  cfg.Modules.Browser.BaseURL,
			Token:    cfg.Modules.Browser.APIKey,
			UserID:   cfg.Modules.Browser.UserID,
			DeviceID: cfg.Modules.Browser.DeviceID,
			Timeout:  time.Duration(cfg.Modules.Browser.TimeoutMS) * time.Millisecond,
		})

		var localBackend playback.Driver = localDriver
		var castBackend playback.Driver = castDriver
		mod, err := browser.NewModule(logger.With(zap.String("module", "browser")), client, catalog, localBackend, castBackend, browser.Config{
			NodeID:    cfg.Modules.Browser.NodeID,
			TopicBase: cfg.Server.TopicBase,
		})
		if err != nil {
			return nil, err
		}
		modules = append(modules, jfd.ModuleRunner{
			Name: "browser",
			Run:  mod.Run,
		})
	}

	return modules, nil
}

func newEmbeddedBroker(cfg jfd.Config, logger *zap.Logger) (*embeddedmqtt.Module, error) {
	return embeddedmqtt.NewModule(logger.With(zap.String("module", "embedded_mqtt")), embeddedmqtt.Config{
		Listen:         cfg.Modules.EmbeddedMQTT.Listen,
		TopicBase:      cfg.Server.TopicBase,
		AllowAnonymous: cfg.Modules.EmbeddedMQTT.AllowAnonymous,
		Username:       cfg.Modules.EmbeddedMQTT.Username,
		Password:       cfg.Modules.EmbeddedMQTT.Password,
		TLSCA:          cfg.Modules.EmbeddedMQTT.TLSCA,
		TLSCert:        cfg.Modules.EmbeddedMQTT.TLSCert,
		TLSKey:         cfg.Modules.EmbeddedMQTT.TLSKey,
	})
}

func embeddedBrokerURL(cfg jfd.Config) string {
	listen := cfg.Modules.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	tlsEnabled := cfg.Modules.EmbeddedMQTT.TLSCert != "" || cfg.Modules.EmbeddedMQTT.TLSKey != "" || cfg.Modules.EmbeddedMQTT.TLSCA != ""
	return embeddedmqtt.BrokerURL(listen, tlsEnabled)
}

func startEmbeddedBroker(ctx context.Context, cfg jfd.Config, logger *zap.Logger, cancel context.CancelFunc) error {
	mod, err := newEmbeddedBroker(cfg, logger)
	if err != nil {
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- mod.Run(ctx)
	}()
	go func() {
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("embedded mqtt exited", zap.Error(err))
			cancel()
		}
	}()

	listen := cfg.Modules.EmbeddedMQTT.Listen
	if listen == "" {
		listen = "127.0.0.1:1883"
	}
	return waitForListen(listen, 3*time.Second)
}

func waitForListen(listen string, timeout time.Duration) error {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return err
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	addr := net.JoinHostPort(host, port)
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 200*time.Millisecond)
		if err == nil {
			_ = conn.Close()
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("embedded mqtt not ready at %s", addr)
}
