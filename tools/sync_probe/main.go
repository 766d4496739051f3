package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/patrickwarner/garminsync/internal/config"
	"github.com/patrickwarner/garminsync/internal/observability"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	logger, err := observability.InitStderrLogger("sync-probe")
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg := config.Load()

	var url, email, password string
	var timeout time.Duration
	flag.StringVar(&url, "url", "http://localhost:"+cfg.Port+"/api/garmin/sync", "sync endpoint")
	flag.StringVar(&email, "email", cfg.GarminEmail, "Garmin account email")
	flag.StringVar(&password, "password", cfg.GarminPassword, "Garmin account password")
	flag.DurationVar(&timeout, "timeout", cfg.WriteTimeout, "request timeout")
	flag.Parse()

	status, body, err := probe(context.Background(), &http.Client{Timeout: timeout}, url, email, password)
	if err != nil {
		logger.Error("probe failed", zap.String("url", url), zap.Error(err))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Reset()
		pretty.Write(body)
	}
	fmt.Println(pretty.String())

	logger.Info("probe finished", zap.String("url", url), zap.Int("status", status))
	if status != http.StatusOK {
		os.Exit(2)
	}
}

// probe posts the credentials to url and returns the status and raw body.
func probe(ctx context.Context, client *http.Client, url, email, password string) (int, []byte, error) {
	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return 0, nil, fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, body, nil
}
