package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/sharipovr/aws-url-shortener/internal/app"
	"github.com/sharipovr/aws-url-shortener/internal/config"
	"github.com/sharipovr/aws-url-shortener/internal/logging"
	lambdaTransport "github.com/sharipovr/aws-url-shortener/internal/transport/lambda"
)

func main() {
	// DynamoDB unless the deployment picks another backend
	if _, ok := os.LookupEnv("STORE_BACKEND"); !ok {
		os.Setenv("STORE_BACKEND", config.BackendDynamoDB)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// The execution environment is frozen between invocations, so clicks
	// are applied before the response is returned
	cfg.Clicks.Workers = 0

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	handler := lambdaTransport.NewHandler(application.Endpoints, logger)
	lambda.Start(handler.Handle)
}
