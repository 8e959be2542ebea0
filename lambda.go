package main

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
)

// lambdaHandler adapts a Handler to the Lambda runtime. Only the error is
// reported back; the outcome is logged.
func lambdaHandler(h Handler) func(context.Context, events.S3Event) error {
	return func(ctx context.Context, event events.S3Event) error {

		if lc, ok := lambdacontext.FromContext(ctx); ok {
			Debug.Printf("RequestID=%s records=%d", lc.AwsRequestID, len(event.Records))
		}

		outcome, err := h.Relocate(ctx, event)
		if err != nil {
			Error.Printf("Relocation failed: %v", err)
			return err
		}
		Debug.Printf("Outcome=%s", outcome)
		return nil
	}
}
