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

	"github.com/carehome-actionplans/internal/application/actionplan"
	"github.com/carehome-actionplans/internal/config"
	"github.com/carehome-actionplans/internal/domain"
	"github.com/carehome-actionplans/internal/infrastructure/awsconf"
	"github.com/carehome-actionplans/internal/infrastructure/dynamo"
	jwtinfra "github.com/carehome-actionplans/internal/infrastructure/jwt"
	"github.com/carehome-actionplans/internal/infrastructure/redisguard"
	"github.com/carehome-actionplans/internal/infrastructure/sns"
	transporthttp "github.com/carehome-actionplans/internal/transport/http"
	"github.com/carehome-actionplans/internal/transport/http/handler"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()
	ctx := context.Background()

	awsCfg, err := awsconf.Load(ctx, cfg, cfg.AWSRegion)
	if err != nil {
		log.Fatalf("aws config: %v", err)
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg.AWSEndpointURL)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	ports := actionplan.Ports{
		Resident:    dynamo.NewActionPlanRepo(dynamoClient, cfg.DynamoTables.ResidentActionPlans, domain.CategoryResident),
		CareFile:    dynamo.NewActionPlanRepo(dynamoClient, cfg.DynamoTables.CareFileActionPlans, domain.CategoryCareFile),
		Governance:  dynamo.NewActionPlanRepo(dynamoClient, cfg.DynamoTables.GovernanceActionPlans, domain.CategoryGovernance),
		Clinical:    dynamo.NewActionPlanRepo(dynamoClient, cfg.DynamoTables.ClinicalActionPlans, domain.CategoryClinical),
		Environment: dynamo.NewActionPlanRepo(dynamoClient, cfg.DynamoTables.EnvironmentActionPlans, domain.CategoryEnvironment),
	}

	// Every route except the health check needs a verified token.
	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	deps := &transporthttp.Deps{
		Ports:        ports,
		JWTProvider:  jwtProvider,
		AckTimeout:   cfg.AckTimeout,
		HealthChecks: map[string]handler.Pinger{},
	}

	// Acknowledgement guard: Redis when several instances share the board,
	// in-process otherwise.
	if cfg.RedisURL != "" {
		guard, err := redisguard.NewGuard(cfg.RedisURL, cfg.AckGuardTTL)
		if err != nil {
			log.Fatalf("redis guard: %v", err)
		}
		defer guard.Close()
		deps.AckGuard = guard
		deps.HealthChecks["redis"] = guard
	} else {
		deps.AckGuard = actionplan.NewMemoryGuard(cfg.AckGuardTTL)
	}

	// SNS status-change events (optional).
	if cfg.SNSTopicARN != "" {
		snsCfg, err := awsconf.Load(ctx, cfg, cfg.SNSRegion)
		if err != nil {
			log.Fatalf("sns config: %v", err)
		}
		deps.Publisher = sns.NewPublisher(snsCfg, cfg.SNSTopicARN)
	} else {
		log.Println("WARN: SNS_TOPIC_ARN not set, status-change events disabled")
	}

	router, err := transporthttp.NewRouter(cfg, deps)
	if err != nil {
		log.Fatalf("router: %v", err)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
