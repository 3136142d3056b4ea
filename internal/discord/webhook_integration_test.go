package discord

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

// Sends a real notification; runs only with DISCORD_WEBHOOK_URL set.
func TestWebhookClient_StageComplete_Integration(t *testing.T) {
	godotenv.Load("../../.env")

	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if webhookURL == "" {
		t.Skip("DISCORD_WEBHOOK_URL not set, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	s := StageSummary{Stage: "integration-test", Rank: "GOLD/IV", Shard: "0/1", Total: 1, Succeeded: 1, Elapsed: time.Second}
	if err := NewWebhookClient(webhookURL).StageComplete(ctx, s); err != nil {
		t.Fatalf("Failed to send notification: %v", err)
	}
}
