package notifiers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type fakeSQSClient struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSQSNotifierSendSuccess(t *testing.T) {
	client := &fakeSQSClient{}
	notifier := &sqsNotifier{
		id:       "queue",
		typ:      TypeSQS,
		queueURL: "https://sqs.test/q",
		client:   client,
		log:      noopLogger{},
	}

	evt := NewEvent(EventAssessmentCompleted, "u1")
	if err := notifier.Notify(context.Background(), evt); err != nil {
		t.Fatalf("Notify returned error: %v", err)
	}
	if client.input == nil {
		t.Fatalf("client was not called")
	}
	if got := aws.ToString(client.input.QueueUrl); got != "https://sqs.test/q" {
		t.Fatalf("QueueUrl = %s", got)
	}
	attr, ok := client.input.MessageAttributes["event_type"]
	if !ok || attr.StringValue == nil || aws.ToString(attr.StringValue) != EventAssessmentCompleted {
		t.Fatalf("event_type attribute missing or wrong: %#v", attr)
	}
	if client.input.MessageBody == nil || !strings.Contains(aws.ToString(client.input.MessageBody), `"user_id":"u1"`) {
		t.Fatalf("MessageBody missing user_id: %s", aws.ToString(client.input.MessageBody))
	}
}

func TestSQSNotifierSendError(t *testing.T) {
	client := &fakeSQSClient{err: errors.New("boom")}
	notifier := &sqsNotifier{
		id:       "queue",
		typ:      TypeSQS,
		queueURL: "https://sqs.test/q",
		client:   client,
		log:      noopLogger{},
	}

	if err := notifier.Notify(context.Background(), Event{Type: EventSessionDeleted}); err == nil {
		t.Fatalf("expected error from Notify")
	}
}
