package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Richard-mb9/pedidos-service/internal/order/api"
	"github.com/Richard-mb9/pedidos-service/internal/order/app"
	orderkafka "github.com/Richard-mb9/pedidos-service/internal/order/kafka"
	"github.com/Richard-mb9/pedidos-service/internal/order/postgres"
	"github.com/Richard-mb9/pedidos-service/pkg/kafka"
	"github.com/Richard-mb9/pedidos-service/pkg/logging"
	"github.com/Richard-mb9/pedidos-service/pkg/metrics"
)

type cfg struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabaseURL  string `env:"DATABASE_URL,required"`
	KafkaBrokers string `env:"KAFKA_BROKERS"`
	KafkaTopic   string `env:"KAFKA_TOPIC" envDefault:"orders"`
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
	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	repo := postgres.NewRepository(pool)

	var publisher app.Publisher = logPublisher{}
	kafkaClient := kafka.NewClient(cfg.KafkaBrokers)
	if kafkaClient.Enabled() {
		kafkaPublisher, err := orderkafka.NewPublisher(kafkaClient, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka error: %v", err)
		}
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	} else {
		log.Print("KAFKA_BROKERS empty, events will only be logged")
	}

	srvMetrics := metrics.NewServerMetrics("order_service")

	handler := &api.Handler{
		CreateOrder: &app.CreateOrder{Repository: repo, Publisher: publisher},
		ChangeOrder: &app.ChangeOrderStatus{Repository: repo, Publisher: publisher},
		FindOrder:   &app.FindOrderByID{Repository: repo},
		Idempotency: repo,
		Metrics:     srvMetrics,
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := pool.Ping(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"db_error"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Mount("/", handler.Routes())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("order-service listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("http server error: %v", err)
	}
}

// logPublisher stands in for the broker in local runs.
type logPublisher struct{}

func (logPublisher) Publish(_ context.Context, eventName string, envelope map[string]any) error {
	eventID, _ := envelope["event_id"].(string)
	logging.Log(logging.Fields{Service: "order-service", EventID: eventID, EventName: eventName, Status: "logged"})
	return nil
}
