package main

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type Outcome int

const (
	Skipped Outcome = iota
	Rejected
	Moved
)

func (o Outcome) String() string {
	switch o {
	case Moved:
		return "moved"
	case Rejected:
		return "rejected"
	}
	return "skipped"
}

type Relocator struct {
	S3          s3iface.S3API
	Destination string
	Check       Check

	// FullObject fetches metadata with GetObject instead of HeadObject.
	FullObject bool
	// QuietCredentials logs a credentials failure and returns no error.
	QuietCredentials bool
	// PropagateValidation returns a *ValidationError to the caller
	// instead of logging it.
	PropagateValidation bool
}

// NewStrictRelocator validates required metadata, fetches the whole object
// and treats missing credentials as a quiet no-op.
func NewStrictRelocator(svc s3iface.S3API, destination string) *Relocator {
	return &Relocator{
		S3:               svc,
		Destination:      destination,
		Check:            ValidateRequired,
		FullObject:       true,
		QuietCredentials: true,
	}
}

func NewPredicateRelocator(svc s3iface.S3API, destination string, p Predicate) *Relocator {
	return &Relocator{
		S3:          svc,
		Destination: destination,
		Check:       PredicateCheck(p),
	}
}

// Relocate handles one notification: fetch metadata, check it, then copy the
// object to the destination bucket under the same key and delete the original.
func (r *Relocator) Relocate(ctx context.Context, event events.S3Event) (Outcome, error) {

	source, err := FirstObject(event)
	if err != nil {
		return Skipped, err
	}

	md, err := FetchMetadata(ctx, r.S3, source, r.FullObject)
	if err != nil {
		if r.QuietCredentials && IsCredentialsError(err) {
			Error.Printf("Credentials not available: %v", err)
			return Skipped, nil
		}
		return Skipped, err
	}
	Debug.Printf("Metadata %s: %v", source, md)

	check := r.Check
	if check == nil {
		check = PredicateCheck(nil)
	}

	if err := check(md); err != nil {
		var verr *ValidationError
		switch {
		case errors.Is(err, ErrRejected):
			Info.Printf("Not moving %s: %v", source, err)
			return Rejected, nil
		case errors.As(err, &verr) && !r.PropagateValidation:
			Error.Printf("Not moving %s: %v", source, err)
			return Rejected, nil
		}
		return Rejected, err
	}

	destination := ObjectRef{Bucket: r.Destination, Key: source.Key}
	if err := S3MoveFile(ctx, r.S3, source, destination); err != nil {
		if r.QuietCredentials && IsCredentialsError(err) {
			Error.Printf("Credentials not available: %v", err)
			return Skipped, nil
		}
		return Skipped, err
	}

	Info.Printf("Moved %s to %s", source, destination)
	return Moved, nil
}
