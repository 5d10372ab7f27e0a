package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/inspikalu/sol-capsule/api"
	"github.com/inspikalu/sol-capsule/app"
	"github.com/inspikalu/sol-capsule/capsule"
	"github.com/inspikalu/sol-capsule/chain"
	"github.com/inspikalu/sol-capsule/models"
	"github.com/inspikalu/sol-capsule/registry"
	"github.com/inspikalu/sol-capsule/storage"
	log "github.com/sirupsen/logrus"
)

func absPath(path string) string {
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		log.Fatal("[MAIN] Error resolving path ", path, ": ", err)
	}
	return abs
}

func millis(value int64) time.Duration {
	return time.Duration(value) * time.Millisecond
}

func main() {

	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	var configPath string
	var envPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&envPath, "env", "", "path to env file")
	flag.Parse()

	if configPath == "" && envPath == "" {
		log.Fatal("[MAIN] Please provide a config file or an env file")
	}

	app.InitConfig(absPath(configPath), absPath(envPath))
	app.InitLogger()
	app.InitDB()

	ctx := context.Background()
	solanaConfig := app.Config.Solana

	cluster, err := chain.ParseCluster(solanaConfig.Cluster)
	if err != nil {
		log.Fatal("[MAIN] ", err)
	}
	rpcTimeout := millis(solanaConfig.RPCTimeoutMillis)
	if err := chain.ValidateNetwork(ctx, chain.NewClient(solanaConfig.RPCURL, rpcTimeout), cluster); err != nil {
		log.Fatal("[MAIN] Error validating network: ", err)
	}

	wallet, err := app.NewServiceWallet(ctx)
	if err != nil {
		log.Fatal("[MAIN] ", err)
	}
	log.Info("[MAIN] Service wallet: ", wallet.Address())

	uploader, err := storage.NewUploader(ctx, app.Config.Storage)
	if err != nil {
		log.Fatal("[MAIN] Error initializing storage: ", err)
	}

	capsules := registry.NewRegistry(nil)
	pipeline, err := capsule.NewPipeline(capsule.PipelineOptions{
		Uploader: uploader,
		Binder: capsule.NewChainBinder(cluster, rpcTimeout, chain.IssuerOptions{
			ConfirmTimeout: millis(solanaConfig.ConfirmTimeoutMillis),
			PollInterval:   millis(solanaConfig.PollIntervalMillis),
		}),
		Store: capsule.MongoRunStore{},
		Locker: capsule.MongoLocker{
			TTL: capsule.LockTTL(millis(solanaConfig.ConfirmTimeoutMillis), millis(app.Config.Storage.TimeoutMillis)),
		},
		Recorder: capsules,
	})
	if err != nil {
		log.Fatal("[MAIN] Error initializing pipeline: ", err)
	}

	session := capsule.Session{
		RPCEndpoint: solanaConfig.RPCURL,
		Wallet:      wallet,
	}

	healthcheck := app.NewHealthCheck(wallet.Address(), cluster.String())

	serviceHealthMap := make(map[string]models.ServiceHealth)
	if app.Config.HealthCheck.ReadLastHealth {
		if lastHealth, err := healthcheck.FindLastHealth(); err == nil {
			for _, serviceHealth := range lastHealth.ServiceHealths {
				serviceHealthMap[serviceHealth.Name] = serviceHealth
			}
		} else {
			log.Debug("[MAIN] No last health found: ", err)
		}
	}

	handler := api.NewHandler(pipeline, capsules, session, healthcheck.ServiceHealths, app.Config.API.MaxUploadBytes)

	wg := &sync.WaitGroup{}
	services := CreateServices(wg, ServiceDeps{
		Pipeline: pipeline,
		Session:  session,
		Handler:  handler,
	}, serviceHealthMap)

	healthService := app.NewHealthService(healthcheck, wg)
	if healthService == nil {
		log.Fatal("[MAIN] Invalid health check parameters")
	}
	services = append(services, healthService)
	healthcheck.SetServices(services)

	wg.Add(len(services))
	for _, service := range services {
		go service.Start()
	}

	log.Info("[MAIN] Server started")

	// Gracefully shut down server
	gracefulStop := make(chan os.Signal, 1)
	done := make(chan bool, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	go waitForExitSignals(gracefulStop, done)
	<-done

	log.Debug("[MAIN] Gracefully shutting down server...")

	for _, service := range services {
		service.Stop()
	}

	wg.Wait()

	if err := app.DB.Disconnect(); err != nil {
		log.Error("[MAIN] Error disconnecting from database: ", err)
	}
	log.Info("[MAIN] Server gracefully stopped")
}

func waitForExitSignals(gracefulStop chan os.Signal, done chan bool) {
	sig := <-gracefulStop
	log.Debug("[MAIN] Got signal: ", sig)
	done <- true
}
