// Command trackorder looks up an order by id or phone number, follows its
// status and message thread live, and can cancel it while cancellation is
// still allowed.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/messages"
	"storefront/internal/postgres"
	"storefront/internal/realtime"
	"storefront/internal/tracking"
	"storefront/models"
	"storefront/pkg/logger"
)

func main() {
	logger.Init()

	orderID := flag.String("order", "", "order id to track")
	phoneNumber := flag.String("phone", "", "phone number to look up the latest order for")
	cancel := flag.Bool("cancel", false, "cancel the order after lookup")
	flag.Parse()

	if *orderID == "" && *phoneNumber == "" {
		log.Fatal("either -order or -phone is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	pgClient, err := postgres.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pgClient.Close()

	channel, err := realtime.Dial(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer channel.Close()

	sync := tracking.NewSync(
		tracking.NewPostgresRepository(pgClient),
		tracking.RealtimeSource{Channel: channel, Queue: cfg.RabbitMQ.OrderQueue},
	)
	defer sync.Unsubscribe()

	ctx, done := context.WithTimeout(context.Background(), 30*time.Second)
	res, err := sync.Lookup(ctx, tracking.Criteria{OrderID: *orderID, Phone: *phoneNumber})
	done()
	if err != nil {
		log.Fatalf("Lookup failed: %v", err)
	}

	log.Printf("✓ Order %s: status=%s, %d items, total=%s",
		res.Projection.OrderID, res.Projection.Status, len(res.Items), res.Projection.TotalAmount)
	for _, m := range res.Messages {
		log.Printf("  [%s] %s: %s", m.CreatedAt.Format(time.Kitchen), m.SenderKind, m.Body)
	}

	if *cancel {
		ctx, done := context.WithTimeout(context.Background(), 30*time.Second)
		err := sync.Cancel(ctx, res.Projection.OrderID)
		done()
		if err != nil {
			log.Fatalf("Cancel failed: %v", err)
		}
		return
	}

	if err := sync.Subscribe(res.Projection.OrderID, func(p tracking.Projection) {
		log.Printf("📦 Status update: %s", p.Status)
	}); err != nil {
		log.Fatalf("Failed to subscribe to order updates: %v", err)
	}

	// Customer view: only show messages the store side sends back.
	thread := messages.NewThread(
		messages.NewPostgresRepository(pgClient),
		messages.RealtimeSource{Channel: channel, Queue: cfg.RabbitMQ.MessageQueue},
	)
	defer thread.Unsubscribe()

	ctx, done = context.WithTimeout(context.Background(), 30*time.Second)
	_, err = thread.LoadHistory(ctx, res.Projection.OrderID, func(m models.OrderMessage) bool {
		return m.SenderKind != models.SenderCustomer
	})
	done()
	if err != nil {
		log.Fatalf("Failed to load message thread: %v", err)
	}
	if err := thread.Subscribe(res.Projection.OrderID, func(m models.OrderMessage) {
		log.Printf("💬 %s: %s", m.SenderKind, m.Body)
	}); err != nil {
		log.Fatalf("Failed to subscribe to messages: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}
