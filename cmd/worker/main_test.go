package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"cv-backend/internal/bootstrap"
	"cv-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	_ = ctx
	_ = params
	_ = optFns
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	_ = ctx
	_ = optFns
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeProcessor struct {
	err  error
	seen []string
}

func (f *fakeProcessor) ProcessStored(ctx context.Context, cvID string) error {
	_ = ctx
	f.seen = append(f.seen, cvID)
	return f.err
}

func appWith(p bootstrap.CVProcessor) *bootstrap.App {
	return &bootstrap.App{CVProcessor: p}
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msgBody, _ := queue.EncodeMessage(queue.Message{CVID: "cv-1", RequestID: "req-1"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m1"),
		ReceiptHandle: aws.String("r1"),
		Body:          aws.String(string(msgBody)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}

	handleMessage(context.Background(), appWith(proc), client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(proc.seen) != 1 || proc.seen[0] != "cv-1" {
		t.Fatalf("expected processing of cv-1, got %v", proc.seen)
	}
}

func TestWorkerDoesNotDeleteOnFailure(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: errors.New("boom")}
	msgBody, _ := queue.EncodeMessage(queue.Message{CVID: "cv-2", RequestID: "req-2"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m2"),
		ReceiptHandle: aws.String("r2"),
		Body:          aws.String(string(msgBody)),
	}

	handleMessage(context.Background(), appWith(proc), client, "queue", msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msg := sqstypes.Message{
		MessageId:     aws.String("m3"),
		ReceiptHandle: aws.String("r3"),
		Body:          aws.String("{bad-json"),
	}

	handleMessage(context.Background(), appWith(proc), client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(proc.seen) != 0 {
		t.Fatalf("expected no processing, got %v", proc.seen)
	}
}

func TestWorkerDeletesOnMissingCVID(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	msgBody, _ := queue.EncodeMessage(queue.Message{RequestID: "req-4"})
	msg := sqstypes.Message{
		MessageId:     aws.String("m4"),
		ReceiptHandle: aws.String("r4"),
		Body:          aws.String(string(msgBody)),
	}

	handleMessage(context.Background(), appWith(proc), client, "queue", msg)

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
	if len(proc.seen) != 0 {
		t.Fatalf("expected no processing, got %v", proc.seen)
	}
}
