package workerproc

import (
	"context"
	"testing"

	"cv-backend/internal/queue"
)

func TestParseMessage(t *testing.T) {
	valid, err := queue.EncodeMessage(queue.Message{CVID: "cv-1", RequestID: "req-1", Version: 1})
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	msg, _, err := ParseMessage(string(valid))
	if err != nil {
		t.Fatalf("parse valid message: %v", err)
	}
	if msg.CVID != "cv-1" || msg.RequestID != "req-1" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if _, _, err := ParseMessage("   "); err == nil {
		t.Fatal("expected error for empty body")
	} else if _, ok := err.(ErrEmptyBody); !ok {
		t.Fatalf("expected ErrEmptyBody, got %T", err)
	}

	if _, _, err := ParseMessage("{not-json"); err == nil {
		t.Fatal("expected error for invalid JSON")
	} else if _, ok := err.(ErrDecode); !ok {
		t.Fatalf("expected ErrDecode, got %T", err)
	}

	noID, _ := queue.EncodeMessage(queue.Message{RequestID: "req-2"})
	if _, _, err := ParseMessage(string(noID)); err == nil {
		t.Fatal("expected error for missing cv id")
	} else if missing, ok := err.(ErrMissingCVID); !ok {
		t.Fatalf("expected ErrMissingCVID, got %T", err)
	} else if missing.RequestID != "req-2" {
		t.Fatalf("expected request id carried through, got %q", missing.RequestID)
	}
}

func TestComputeMeta(t *testing.T) {
	if meta := ComputeMeta(""); meta.BodyLen != 0 || meta.BodySHA != "" {
		t.Fatalf("unexpected empty meta: %+v", meta)
	}
	meta := ComputeMeta("hello")
	if meta.BodyLen != 5 || len(meta.BodySHA) != 64 {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}

func TestHandleMessageRequiresApp(t *testing.T) {
	err := HandleMessage(context.Background(), nil, "{}")
	if err == nil {
		t.Fatal("expected error for nil app")
	}
}
