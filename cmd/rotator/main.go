package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"avatar_update_bot/internal/app"
	"avatar_update_bot/internal/infra/blob"
	infraBluesky "avatar_update_bot/internal/infra/bluesky"
	"avatar_update_bot/internal/infra/config"
	"avatar_update_bot/internal/infra/health"
	"avatar_update_bot/internal/infra/logger"
	"avatar_update_bot/internal/infra/scheduler"
	"avatar_update_bot/internal/infra/schedulefile"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

var version = "dev"

// exitCodeConfig is used for configuration failures that happen before the
// pipeline can classify anything itself.
const exitCodeConfig = 2

func main() {
	cliApp := cli.NewApp()
	cliApp.Name = "rotator"
	cliApp.Usage = "rotates a Bluesky profile avatar on an hourly schedule"
	cliApp.Version = version
	cliApp.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "execute one update cycle and exit",
			Action: runOnce,
		},
		{
			Name:   "daemon",
			Usage:  "run the update cycle on an in-process cron schedule",
			Action: runDaemon,
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "rotator: %s\n", err.Error())
		os.Exit(1)
	}
}

// setup loads configuration and wires the pipeline. Shared by both commands.
func setup() (*app.UpdateServiceImpl, *config.AppConfig, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not load configuration: %w", err)
	}

	log := logger.New(cfg)
	log.Infof("Configuration loaded. LogLevel: %s, Environment: %s, Schedule: %s", cfg.LogLevel, cfg.Environment, cfg.SchedulePath)

	address := health.Normalize(cfg.EndpointAddress)
	log.Debugf("Endpoint address normalized to %s", address)

	service := app.NewUpdateService(
		address,
		cfg.Handle,
		cfg.Password,
		cfg.AccountDID,
		cfg.UpdateBanner,
		schedulefile.NewFileSource(cfg.SchedulePath, log),
		health.NewProber(log),
		blob.NewRetriever(log),
		infraBluesky.NewXRPCClient(address, log),
		log,
	)
	return service, cfg, log, nil
}

func runOnce(_ *cli.Context) error {
	service, _, _, err := setup()
	if err != nil {
		return cli.NewExitError(err.Error(), exitCodeConfig)
	}

	if fail := service.RunCycle(context.Background(), time.Now()); fail != nil {
		// Failure details are already logged by the pipeline; the exit code
		// carries the class for external monitoring.
		return cli.NewExitError(fail.Error(), fail.Class.ExitCode())
	}
	return nil
}

func runDaemon(_ *cli.Context) error {
	service, cfg, log, err := setup()
	if err != nil {
		return cli.NewExitError(err.Error(), exitCodeConfig)
	}

	updateScheduler := scheduler.NewUpdateScheduler(service, log, cfg.CronSpec)
	if err := updateScheduler.Start(); err != nil {
		return cli.NewExitError(fmt.Sprintf("could not start scheduler: %v", err), exitCodeConfig)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down...")
	updateScheduler.Stop()
	log.Info("Shut down gracefully")
	return nil
}
