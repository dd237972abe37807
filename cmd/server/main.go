package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	grpcadapter "github.com/gnuhannes/my-private-finances/internal/adapter/grpc"
	"github.com/gnuhannes/my-private-finances/internal/adapter/scheduler"
	"github.com/gnuhannes/my-private-finances/internal/app"
	"github.com/gnuhannes/my-private-finances/internal/config"
	"github.com/gnuhannes/my-private-finances/internal/logging"
)

func main() {
	// 1. Configuration and logging
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logger := logging.SetupLogging(cfg.LogLevel, cfg.LogFormat)

	// 2. Database, migrations, seed data and services
	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialise application")
	}
	defer a.Close()

	// 3. Optional scheduled detection
	var c *cron.Cron
	if cfg.DetectionSchedule != "" {
		job := scheduler.NewDetectionJob(a.Transfers, a.Recurring, a.Accounts, logger.WithField("component", "scheduler"))
		c, err = scheduler.Start(cfg.DetectionSchedule, job)
		if err != nil {
			logger.WithError(err).Fatal("Scheduler didn't start")
		}
		logger.WithField("schedule", cfg.DetectionSchedule).Info("Scheduled detection enabled")
	}

	// 4. gRPC server
	grpcServer := grpclib.NewServer(
		grpclib.UnaryInterceptor(grpcadapter.LoggingInterceptor(logger)),
	)
	grpcadapter.RegisterFinanceServiceServer(grpcServer, grpcadapter.NewServer(a.Imports, a.Transfers, a.Recurring, a.Rules, a.Profiles))

	healthServer := health.NewServer()
	healthServer.SetServingStatus(grpcadapter.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, healthServer)

	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		logger.WithError(err).Fatalf("Failed to listen on %s", cfg.GRPCAddr)
	}

	go func() {
		logger.Infof("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcServer.Serve(lis); err != nil {
			logger.WithError(err).Fatal("Failed to serve gRPC server")
		}
	}()

	waitForShutdown(logger, grpcServer, healthServer, c)
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(logger logrus.FieldLogger, grpcServer *grpclib.Server, healthServer *health.Server, c *cron.Cron) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Infof("Received signal: %v. Shutting down gracefully...", sig)

	healthServer.Shutdown()
	if c != nil {
		<-c.Stop().Done()
	}
	grpcServer.GracefulStop()
	logger.Info("gRPC server stopped")
}
