package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/aws/aws-sdk-go/service/sqs/sqsiface"
)

// Handler processes one notification.
type Handler interface {
	Relocate(ctx context.Context, event events.S3Event) (Outcome, error)
}

// Poller feeds S3 notifications received through SQS to a Handler.
type Poller struct {
	SQS             sqsiface.SQSAPI
	QueueName       string
	PollTimeout     int64
	PollMaxMessages int64
	DeleteMessages  bool

	queueURL *string
}

func (p *Poller) url(ctx context.Context) (*string, error) {

	if p.queueURL != nil {
		return p.queueURL, nil
	}

	out, err := p.SQS.GetQueueUrlWithContext(ctx, &sqs.GetQueueUrlInput{
		QueueName: aws.String(p.QueueName),
	})
	if err != nil {
		if awserr, ok := err.(awserr.Error); ok && awserr.Code() == sqs.ErrCodeQueueDoesNotExist {
			return nil, fmt.Errorf("Unable to find queue %q.", p.QueueName)
		}
		return nil, fmt.Errorf("Unable to poll queue %q, %v.", p.QueueName, err)
	}
	p.queueURL = out.QueueUrl
	return p.queueURL, nil
}

// PollSQS receives one batch of messages. Bodies that are not S3
// notifications come back flagged Undecodable.
func (p *Poller) PollSQS(ctx context.Context) ([]*S3EventMsg, error) {

	queueURL, err := p.url(ctx)
	if err != nil {
		return nil, err
	}

	Debug.Printf("Polling SQS: %s", p.QueueName)

	result, err := p.SQS.ReceiveMessageWithContext(ctx, &sqs.ReceiveMessageInput{
		QueueUrl: queueURL,
		AttributeNames: aws.StringSlice([]string{
			"SentTimestamp",
		}),
		MaxNumberOfMessages: aws.Int64(p.PollMaxMessages),
		WaitTimeSeconds:     aws.Int64(p.PollTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("Unable to receive message from queue %q, %v.", p.QueueName, err)
	}

	Debug.Printf("SQS received %d messages.", len(result.Messages))

	msgs := make([]*S3EventMsg, len(result.Messages))
	for i, m := range result.Messages {
		msgs[i] = sqsDecode(m)
	}
	return msgs, nil
}

func sqsDecode(r *sqs.Message) *S3EventMsg {

	s3msg := &S3EventMsg{ReceiptHandle: r.ReceiptHandle}

	if err := json.Unmarshal([]byte(aws.StringValue(r.Body)), &s3msg.S3Event); err != nil {
		Error.Printf("SQS-S3 JSON Error: %v", err)
		s3msg.Undecodable = true
		return s3msg
	}
	Debug.Printf("UnMarshalled SQS JSON=%+v", s3msg.S3Event)
	return s3msg
}

func (p *Poller) sqsDelete(ctx context.Context, receiptHandle *string) {

	if !p.DeleteMessages {
		return
	}
	queueURL, err := p.url(ctx)
	if err != nil {
		Error.Printf("SQS Delete URL Error: %v", err)
		return
	}
	_, err = p.SQS.DeleteMessageWithContext(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      queueURL,
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		Error.Printf("SQS Delete Error: %v", err)
	}
}

// retryLater reports whether a failed notification may succeed when
// redelivered. Malformed records and vanished source objects never will.
// A missing destination bucket is a configuration problem, so those
// messages are kept.
func retryLater(err error) bool {
	var s3err *S3Error
	switch {
	case errors.Is(err, ErrNoRecords),
		errors.Is(err, ErrIncompleteRecord),
		errors.Is(err, ErrBadKey):
		return false
	case errors.As(err, &s3err) && s3err.Op == opMoveCopy && errorCode(err) == s3.ErrCodeNoSuchBucket:
		return true
	}
	return !IsNotFound(err)
}

// PollOnce receives one batch and hands every message to h. Messages are
// deleted once handled, or when they can never be handled. Messages whose
// handling may succeed later stay on the queue. It returns the number
// received.
func (p *Poller) PollOnce(ctx context.Context, h Handler) (int, error) {

	msgs, err := p.PollSQS(ctx)
	if err != nil {
		return 0, err
	}

	for _, msg := range msgs {
		if msg.Undecodable {
			p.sqsDelete(ctx, msg.ReceiptHandle)
			continue
		}
		if len(msg.Records) == 0 {
			Debug.Printf("Ignoring notification without records")
			p.sqsDelete(ctx, msg.ReceiptHandle)
			continue
		}

		outcome, err := h.Relocate(ctx, msg.S3Event)
		if err != nil {
			retry := retryLater(err)
			Error.Printf("Failed to relocate (retry_later=%v): %v", retry, err)
			if !retry {
				p.sqsDelete(ctx, msg.ReceiptHandle)
			}
			continue
		}
		Debug.Printf("Outcome=%s", outcome)
		p.sqsDelete(ctx, msg.ReceiptHandle)
	}
	return len(msgs), nil
}

// Run polls until emptyPolls consecutive polls return nothing, or ctx ends.
func (p *Poller) Run(ctx context.Context, h Handler, emptyPolls int) {

	pollCount := emptyPolls
	for pollCount > 0 && ctx.Err() == nil {

		Debug.Printf("pollCount=%d", pollCount)

		n, err := p.PollOnce(ctx, h)
		if err != nil {
			Error.Printf("Failed to poll SQS: %v", err)
			pollCount--
			continue
		}

		pollCount--
		if n > 0 {
			pollCount = emptyPolls
		}
	}
}
