package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/budget-ledger/api"
	"github.com/carson-networks/budget-ledger/internal/config"
	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/operator"
	"github.com/carson-networks/budget-ledger/internal/service"
	"github.com/carson-networks/budget-ledger/internal/storage"
	"github.com/carson-networks/budget-ledger/internal/storage/memory"
)

func main() {
	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Fatal("config.ProcessEnvironmentVariables")
		return
	}

	logger := logging.SetupLogging(envConfig.LogLevel)
	logger.WithField("storage", envConfig.StorageMode).Info("budget-ledger starting")

	var store *storage.Storage
	switch envConfig.StorageMode {
	case config.StorageModeMemory:
		store = memory.NewStorage()
	default:
		store, err = storage.NewStorage(envConfig)
		if err != nil {
			logger.WithError(err).Fatal("storage.NewStorage")
			return
		}
	}
	defer store.Close()

	op := operator.NewOperatorDelegator(store, envConfig.Workers, logger)
	op.Start()
	defer op.Stop()

	svc := service.NewService(store, op, service.OptionsFromConfig(envConfig), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpRest := api.Rest{
		Logger:      logger,
		Port:        envConfig.Port,
		Service:     svc,
		Operator:    op,
		StorageMode: envConfig.StorageMode,
	}
	httpRest.Serve(ctx)
}
