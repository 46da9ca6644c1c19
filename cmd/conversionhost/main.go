package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rflorenc/conversion-host-service/internal/api"
	"github.com/rflorenc/conversion-host-service/internal/config"
	"github.com/rflorenc/conversion-host-service/internal/credentials"
	"github.com/rflorenc/conversion-host-service/internal/executor"
	"github.com/rflorenc/conversion-host-service/internal/inventory"
	"github.com/rflorenc/conversion-host-service/internal/models"
	"github.com/rflorenc/conversion-host-service/internal/queue"
	"github.com/rflorenc/conversion-host-service/internal/tasks"
	"github.com/rflorenc/conversion-host-service/internal/workflow"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-v" {
			fmt.Printf("conversionhost %s (commit: %s, built: %s)\n", version, commit, date)
			os.Exit(0)
		}
	}

	cfg := config.Parse()

	archive, err := tasks.OpenSQLite(cfg.Database)
	if err != nil {
		log.Fatal("Failed to open task database: ", err)
	}
	defer archive.Close()

	// Seed inventory from config
	inv := inventory.New()
	for _, rc := range cfg.Resources {
		kind, err := models.ParseResourceKind(rc.Type)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping resource id:%s: %v\n", rc.ID, err)
			continue
		}
		inv.Add(&models.ManagedResource{ID: rc.ID, Kind: kind, Name: rc.Name}, rc.Forbidden)
		fmt.Printf("Loaded resource: %s (%s id:%s)\n", rc.Name, kind.Collection(), rc.ID)
	}

	entries := make([]credentials.Credential, 0, len(cfg.Credentials))
	for _, cc := range cfg.Credentials {
		entries = append(entries, credentials.Credential{
			Name:     cc.Name,
			Username: cc.Username,
			Password: cc.Password,
			SSHKey:   cc.SSHKey,
		})
	}
	credStore := credentials.NewStore(entries, cfg.DefaultCredential)

	stepTimeout := time.Duration(cfg.StepTimeoutSeconds) * time.Second
	runner := executor.NewClient(executor.Config{
		BaseURL:  cfg.Executor.URL,
		Username: cfg.Executor.Username,
		Password: cfg.Executor.Password,
		Insecure: cfg.Executor.Insecure,
		Timeout:  stepTimeout,
	})

	// Verify runner connectivity early
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := runner.Ping(pingCtx); err != nil {
		fmt.Printf("  PING FAILED: provisioning executor: %v\n", err)
	} else {
		fmt.Println("  PING OK: provisioning executor: reachable")
	}
	cancel()

	hosts := models.NewConversionHostStore()
	taskStore := tasks.NewStore(archive)
	pool := queue.NewWorkerPool(cfg.Workers, cfg.QueueDepth)

	engine := &workflow.Engine{
		Inventory:   inv,
		Hosts:       hosts,
		Credentials: credStore,
		Executor:    runner,
		Tasks:       taskStore,
		StepTimeout: stepTimeout,
	}
	server := &api.Server{
		Hosts:     hosts,
		Resolver:  inv,
		Inventory: inv,
		Tasks:     taskStore,
		Queue:     pool,
		Engine:    engine,
	}

	srv := &http.Server{Addr: cfg.Listen, Handler: api.NewRouter(server)}
	go func() {
		fmt.Printf("Conversion host service %s starting on %s\n", version, cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	// Stop accepting requests, then drain in-flight workflows before the
	// task archive closes.
	fmt.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "HTTP shutdown: %v\n", err)
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Worker pool shutdown: %v\n", err)
	}
}
