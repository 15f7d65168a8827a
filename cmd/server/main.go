package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/sender-hub/internal/api"
	"github.com/ignite/sender-hub/internal/config"
	"github.com/ignite/sender-hub/internal/dns"
	"github.com/ignite/sender-hub/internal/domainverify"
	"github.com/ignite/sender-hub/internal/pkg/distlock"
	"github.com/ignite/sender-hub/internal/poller"
	"github.com/ignite/sender-hub/internal/registry"
	"github.com/ignite/sender-hub/internal/schedule"
	"github.com/ignite/sender-hub/internal/store"
	"github.com/ignite/sender-hub/internal/verification"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v", port, addr, err)
	}
	ln.Close()
	return nil
}

func main() {
	dev := flag.Bool("dev", false, "run with in-memory storage and no scheduler")
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	// Storage
	var senderStore store.SenderStore
	var domainStore store.DomainStore
	if *dev {
		mem := store.NewMemoryStore()
		senderStore = mem
		domainStore = mem.Domains()
		log.Println("Dev mode: using in-memory storage")
	} else {
		dyn, err := store.NewDynamoStore(ctx, cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize DynamoDB store: %v", err)
		}
		senderStore = dyn
		domainStore = dyn.Domains()
		log.Printf("DynamoDB store initialized (table %s)", cfg.Storage.DynamoDBTable)
	}

	// Verification provider
	provider, err := verification.NewSESProvider(ctx, cfg.SES)
	if err != nil {
		log.Fatalf("Failed to initialize SES provider: %v", err)
	}

	// Scheduler
	var scheduler schedule.Client = schedule.NoopClient{}
	if !*dev && cfg.Scheduler.TargetArn != "" {
		eb, err := schedule.NewEventBridgeClient(ctx, cfg.Scheduler, cfg.Storage.AWSRegion)
		if err != nil {
			log.Fatalf("Failed to initialize EventBridge scheduler: %v", err)
		}
		scheduler = eb
		log.Printf("EventBridge scheduler initialized (group %s)", cfg.Scheduler.GroupName)
	} else {
		log.Println("Scheduler disabled: verification polls rely on client-driven refresh")
	}

	// Optional Redis tenant lock
	var locker *distlock.TenantLocker
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Pass,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Redis unreachable, default-sender locking disabled: %v", err)
		} else {
			locker = distlock.NewTenantLocker(redisClient, 10*time.Second)
			log.Printf("Redis tenant locking enabled (%s)", cfg.Redis.Addr)
		}
		cancel()
	}

	// Optional Route53 auto-provisioning
	var provisioner dns.Provisioner
	if cfg.Route53.Enabled && cfg.Route53.HostedZoneID != "" {
		r53, err := dns.NewRoute53Provisioner(ctx, cfg.Route53.HostedZoneID, cfg.Storage.AWSRegion)
		if err != nil {
			log.Printf("Route53 provisioner unavailable, DKIM auto-provisioning disabled: %v", err)
		} else {
			provisioner = r53
			log.Printf("Route53 DKIM auto-provisioning enabled (zone %s)", cfg.Route53.HostedZoneID)
		}
	}

	// Services
	allocator := registry.NewDefaultAllocator(senderStore, locker)
	reg := registry.New(senderStore, provider, scheduler, allocator, cfg.Verification.PollInterval())
	pol := poller.New(senderStore, provider, scheduler, cfg.Verification.Timeout(), cfg.Verification.PollInterval())
	domains := domainverify.New(domainStore, provider, provisioner)

	handlers := api.NewHandlers(reg, pol, domains, cfg.Scheduler.CallbackToken)
	router := api.SetupRoutes(handlers)

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("%v", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting sender-hub on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
