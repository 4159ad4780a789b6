package amqp

import (
	"testing"
	"time"
)

func TestNewExportMessage(t *testing.T) {
	msg := NewExportMessage("tx-1", "alice")

	if msg.TransactionID != "tx-1" {
		t.Errorf("TransactionID = %v, want tx-1", msg.TransactionID)
	}
	if msg.UserID != "alice" {
		t.Errorf("UserID = %v, want alice", msg.UserID)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should not be zero")
	}
	if time.Since(msg.Timestamp) > time.Second {
		t.Error("Timestamp should be recent")
	}
}

func TestExportMessage_JSON(t *testing.T) {
	timestamp := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	msg := &ExportMessage{
		TransactionID: "tx-1",
		UserID:        "alice",
		Timestamp:     timestamp,
	}

	jsonBytes, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ExportMessageFromJSON(jsonBytes)
	if err != nil {
		t.Fatalf("ExportMessageFromJSON() error = %v", err)
	}

	if parsed.TransactionID != msg.TransactionID || parsed.UserID != msg.UserID {
		t.Errorf("parsed = %+v, want %+v", parsed, msg)
	}
	if !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Errorf("Parsed Timestamp = %v, want %v", parsed.Timestamp, msg.Timestamp)
	}
}

func TestExportMessage_InvalidJSON(t *testing.T) {
	if _, err := ExportMessageFromJSON([]byte(`{"transaction_id": 42`)); err == nil {
		t.Error("ExportMessageFromJSON() should fail with invalid JSON")
	}
}
