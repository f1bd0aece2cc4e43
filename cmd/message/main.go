package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"household-agent/handler"
	"household-agent/internal/conversation"
	"household-agent/internal/conversations/greeting"
	"household-agent/internal/conversations/joker"
	"household-agent/internal/conversations/stockcheck"
	"household-agent/internal/integrations/dadjoke"
	"household-agent/internal/integrations/paramstore"
	"household-agent/internal/integrations/twilio"
	"household-agent/internal/larder"
	"household-agent/internal/repository"
	"household-agent/internal/scheduler"
)

func main() {
	ctx := context.Background()
	logger := slog.Default()

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	scheduleTable := mustEnv("SCHEDULE_TABLE")
	larderTable := mustEnv("LARDER_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	stateStore, err := repository.NewStateStore(dynamoClient, stateTable)
	if err != nil {
		logger.Error("failed to create state store", "err", err)
		os.Exit(1)
	}
	scheduleStore, err := repository.NewScheduleStore(dynamoClient, scheduleTable)
	if err != nil {
		logger.Error("failed to create schedule store", "err", err)
		os.Exit(1)
	}
	larderStore, err := repository.NewLarderStore(dynamoClient, larderTable)
	if err != nil {
		logger.Error("failed to create larder store", "err", err)
		os.Exit(1)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		logger.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}
	smsClient, err := twilio.NewClient(ssmClient, paramPrefix)
	if err != nil {
		logger.Error("failed to create Twilio client", "err", err)
		os.Exit(1)
	}

	// ---- Services ----
	sched, err := scheduler.New(scheduleStore, logger)
	if err != nil {
		logger.Error("failed to create scheduler", "err", err)
		os.Exit(1)
	}
	inventory, err := larder.New(larderStore)
	if err != nil {
		logger.Error("failed to create larder service", "err", err)
		os.Exit(1)
	}

	registry := conversation.NewRegistry()
	registrations := []struct {
		key     string
		factory conversation.Factory
	}{
		// Order is load-bearing: spontaneous messages are offered to each
		// type in this order.
		{greeting.Key, greeting.NewFactory()},
		{joker.Key, joker.NewFactory(dadjoke.NewClient())},
		{stockcheck.Key, stockcheck.NewFactory(inventory, sched)},
	}
	for _, r := range registrations {
		if err := registry.Register(r.key, r.factory); err != nil {
			logger.Error("failed to register conversation type", "key", r.key, "err", err)
			os.Exit(1)
		}
	}

	tracker, err := conversation.NewTracker(stateStore, registry, smsClient, logger)
	if err != nil {
		logger.Error("failed to create tracker", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	h, err := handler.NewMessageHandler(tracker, logger)
	if err != nil {
		logger.Error("failed to create message handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}
