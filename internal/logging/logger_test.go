package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: slog.LevelInfo, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	logger.Debug("hidden")
	logger.Info("order created", "order_id", "ORD-123456")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["msg"] != "order created" || record["order_id"] != "ORD-123456" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestNew_FileFanOut(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "storefront.log")
	var console bytes.Buffer
	logger, closer, err := New(Options{Level: slog.LevelInfo, Format: "text", FilePath: path, Output: &console})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	logger.With("component", "orders").Warn("order changed before cancellation was written")
	if err := closer.Close(); err != nil {
		t.Fatalf("failed to close log file: %v", err)
	}

	if !strings.Contains(console.String(), "order changed before cancellation was written") {
		t.Fatalf("console output missing message: %q", console.String())
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(raw), `"component":"orders"`) {
		t.Fatalf("file output missing attrs: %q", raw)
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	scoped := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), scoped)

	if got := FromContext(ctx, nil); got != scoped {
		t.Fatal("expected context logger")
	}
	if got := FromContext(context.Background(), nil); got == nil {
		t.Fatal("expected no-op logger fallback")
	}
}

func TestNew_RedactsShopperContact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, closer, err := New(Options{Level: slog.LevelInfo, Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer closer.Close()

	logger.Info("order confirmation sent",
		"recipient", "ada@example.com",
		"phone", "+44 20 7946 0000",
		"order_id", "ORD-123456",
	)

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if record["recipient"] != "***@example.com" {
		t.Fatalf("recipient = %v, want masked email", record["recipient"])
	}
	if record["phone"] != "***" {
		t.Fatalf("phone = %v, want ***", record["phone"])
	}
	if record["order_id"] != "ORD-123456" {
		t.Fatalf("order_id = %v, want it untouched", record["order_id"])
	}
}
