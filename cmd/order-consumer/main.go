package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Richard-mb9/pedidos-service/pkg/kafka"
	"github.com/Richard-mb9/pedidos-service/pkg/logging"
	"github.com/Richard-mb9/pedidos-service/pkg/metrics"
)

type cfg struct {
	Port         string `env:"PORT" envDefault:"8081"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	KafkaBrokers string `env:"KAFKA_BROKERS,required"`
	Topic        string `env:"KAFKA_TOPIC" envDefault:"orders"`
	GroupID      string `env:"KAFKA_GROUP_ID" envDefault:"order-consumer"`
}

// envelope is the published event shape; payload stays raw for storage.
type envelope struct {
	EventID    string          `json:"event_id"`
	EventName  string          `json:"event_name"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func main() {
	var cfg cfg
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect error: %v", err)
	}
	defer pool.Close()

	srvMetrics := metrics.NewServerMetrics("order_consumer")

	kafkaClient := kafka.NewClient(cfg.KafkaBrokers)
	go consumeEvents(pool, kafkaClient, cfg, srvMetrics)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db_error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Printf("order-consumer listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}

func consumeEvents(pool *pgxpool.Pool, client *kafka.Client, cfg cfg, srvMetrics *metrics.ServerMetrics) {
	reader := client.NewReader(cfg.Topic, cfg.GroupID)
	defer reader.Close()
	for {
		msg, err := reader.ReadMessage(context.Background())
		if err != nil {
			log.Printf("kafka read error: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}
		var evt envelope
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			log.Printf("event decode error: %v", err)
			continue
		}
		if evt.EventID == "" {
			continue
		}
		if err := storeNotification(context.Background(), pool, evt); err != nil {
			log.Printf("notification save error: %v", err)
			continue
		}
		logging.Log(logging.Fields{
			Service:   "order-consumer",
			OrderID:   orderIDFrom(evt.Payload),
			EventID:   evt.EventID,
			EventName: evt.EventName,
			Status:    "stored",
		})
	}
}

// storeNotification dedupes on event_id, then records the event for
// downstream notification delivery. Re-delivered messages are no-ops.
func storeNotification(ctx context.Context, pool *pgxpool.Pool, evt envelope) error {
	_, err := pool.Exec(ctx, `INSERT INTO order_inbox(event_id) VALUES ($1)
		ON CONFLICT (event_id) DO NOTHING`, evt.EventID)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `INSERT INTO order_notifications(event_id, order_id, event_name, payload)
		VALUES ($1, $2, $3, $4) ON CONFLICT (event_id) DO NOTHING`,
		evt.EventID, orderIDFrom(evt.Payload), evt.EventName, string(evt.Payload))
	return err
}

func orderIDFrom(payload json.RawMessage) string {
	var body struct {
		OrderID string `json:"order_id"`
	}
	_ = json.Unmarshal(payload, &body)
	return body.OrderID
}
