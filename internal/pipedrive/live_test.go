package pipedrive

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golovatskygroup/pipedrive-lens/internal/config"
	"github.com/golovatskygroup/pipedrive-lens/internal/testutil"
)

// Live smoke test against a real account. Runs only when a token is
// available; a repo-root .env file works.
func TestLiveListPipelines(t *testing.T) {
	_ = testutil.LoadDotEnv()
	token := os.Getenv(config.EnvAPIToken)
	if token == "" {
		t.Skip("PIPEDRIVE_API_TOKEN not set")
	}

	base := os.Getenv(config.EnvBaseURL)
	if base == "" {
		base = config.DefaultBaseURL
	}

	c := New(base, token, 30*time.Second, nil)
	pipelines, err := c.ListPipelines(context.Background())
	if err != nil {
		t.Fatalf("ListPipelines: %v", err)
	}
	t.Logf("account has %d pipelines", len(pipelines))
}
