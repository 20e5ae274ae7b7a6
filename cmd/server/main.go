package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mailforge/bulkmail-backend/internal/cache"
	"github.com/mailforge/bulkmail-backend/internal/controller"
	"github.com/mailforge/bulkmail-backend/internal/db"
	"github.com/mailforge/bulkmail-backend/internal/mailer"
	"github.com/mailforge/bulkmail-backend/internal/queue"
	"github.com/mailforge/bulkmail-backend/internal/repository"
	"github.com/mailforge/bulkmail-backend/internal/service"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ No .env file found, relying on OS environment variables")
	}

	// Init DB
	db.Init()

	transport := buildTransport()
	events := buildPublisher()
	mailCache := buildCache()

	repo := repository.NewBulkMailRepository(db.DB)

	dispatchService := &service.DispatchService{
		Repo:      repo,
		Transport: transport,
		Events:    events,
		From:      os.Getenv("MAIL_FROM"),
	}

	historyService := &service.HistoryService{
		Repo:  repo,
		Cache: mailCache,
	}

	bulkMailController := &controller.BulkMailController{
		Dispatch: dispatchService,
		HistoryService: historyService,
	}

	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:3000"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Mail routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/send-bulk", bulkMailController.SendBulk)
		r.Get("/history", bulkMailController.History)
		r.Get("/history/{id}", bulkMailController.HistoryByID)
		r.Get("/recipients/{id}", bulkMailController.Recipients)
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Println("🚀 Server running on :" + port)
	log.Fatal(http.ListenAndServe(":"+port, r))
}

func buildTransport() mailer.Transport {
	accessKey := os.Getenv("SES_ACCESS_KEY")
	secretKey := os.Getenv("SES_SECRET_KEY")
	if accessKey == "" || secretKey == "" {
		log.Println("⚠️ SES credentials missing, using mock transport")
		return &mailer.MockTransport{}
	}

	transport, err := mailer.NewSESTransport(context.Background(), accessKey, secretKey, os.Getenv("SES_REGION"))
	if err != nil {
		log.Fatalf("failed to initialize SES transport: %v", err)
	}
	return transport
}

func buildPublisher() queue.Publisher {
	url := os.Getenv("AMQP_URL")
	if url == "" {
		log.Println("⚠️ AMQP_URL not set, campaign events disabled")
		return queue.NopPublisher{}
	}

	publisher, err := queue.NewAMQPPublisher(url, "campaign_events")
	if err != nil {
		log.Println("⚠️ Failed to connect to RabbitMQ, campaign events disabled:", err)
		return queue.NopPublisher{}
	}
	return publisher
}

func buildCache() *cache.BulkMailCache {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	return cache.NewBulkMailCache(addr, os.Getenv("REDIS_PASSWORD"), 0, time.Hour)
}
