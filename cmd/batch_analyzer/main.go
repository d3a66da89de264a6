package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"whale_analyzer/internal/app/bootstrap"
	"whale_analyzer/internal/app/provider"
	"whale_analyzer/internal/domain/entity"
	"whale_analyzer/internal/infrastructure/configloader"
	"whale_analyzer/internal/pkg/logger"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run returns the process exit code so deferred log flushing always happens.
func run(args []string, stdout io.Writer) int {
	flags := flag.NewFlagSet("batch_analyzer", flag.ContinueOnError)
	var (
		cfgPath    = flags.String("config", configloader.DefaultPath, "path to config file")
		address    = flags.String("address", "", "single wallet address to analyze")
		walletFile = flags.String("wallets", "", "watch-list file with one address per line")
		asJSON     = flags.Bool("json", false, "print snapshots as JSON instead of a report")
	)
	if err := flags.Parse(args); err != nil {
		return 2
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stderr)

	if *address == "" && *walletFile == "" {
		fmt.Fprintln(os.Stderr, "either -address or -wallets is required")
		flags.Usage()
		return 2
	}

	if env := os.Getenv("CONFIG_PATH"); env != "" && *cfgPath == configloader.DefaultPath {
		*cfgPath = env
	}
	cfg, err := configloader.Load(*cfgPath)
	if err != nil {
		logrus.Errorf("Failed to load configuration: %v", err)
		return 1
	}

	zapLogger := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: "console",
		File:   cfg.Logging.File,
	})
	defer func() { _ = zapLogger.Sync() }()
	appLogger := logger.NewSlogAdapter()

	wallets := []entity.Wallet{{Address: *address}}
	if *walletFile != "" {
		wallets, err = provider.NewWalletProvider(*walletFile, appLogger).GetWallets()
		if err != nil {
			logrus.Errorf("Failed to load wallets: %v", err)
			return 1
		}
	}

	core := bootstrap.Build(cfg, zapLogger, appLogger)
	ctx := context.Background()

	failed := 0
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for _, w := range wallets {
		snapshot, err := core.Analysis.AnalyzeWallet(ctx, w.Address)
		if err != nil {
			failed++
			if *asJSON {
				_ = enc.Encode(map[string]string{"address": w.Address, "error": err.Error()})
			} else {
				fmt.Fprintln(stdout, renderFailure(w.Address, err))
			}
			continue
		}
		if *asJSON {
			_ = enc.Encode(snapshot)
		} else {
			fmt.Fprintln(stdout, renderReport(w.Label, snapshot))
		}
	}

	if failed == len(wallets) {
		return 1
	}
	return 0
}
