package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
)

var (
	ErrNoRecords        = errors.New("notification has no records")
	ErrIncompleteRecord = errors.New("notification record has no bucket or key")
	ErrBadKey           = errors.New("bad object key")
)

// S3EventMsg is an S3 notification delivered through SQS.
type S3EventMsg struct {
	events.S3Event
	ReceiptHandle *string `json:"-"`
	Undecodable   bool    `json:"-"`
}

type ObjectRef struct {
	Bucket string
	Key    string
}

func (o ObjectRef) String() string {
	return fmt.Sprintf("s3://%s/%s", o.Bucket, o.Key)
}

// FirstObject returns the object named by the first record of the event.
// Keys arrive URL-encoded in notifications and are decoded here.
func FirstObject(event events.S3Event) (ObjectRef, error) {

	if len(event.Records) == 0 {
		return ObjectRef{}, ErrNoRecords
	}
	record := event.Records[0]

	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return ObjectRef{}, fmt.Errorf("%w %q: %v", ErrBadKey, record.S3.Object.Key, err)
	}

	if record.S3.Bucket.Name == "" || key == "" {
		return ObjectRef{}, ErrIncompleteRecord
	}

	return ObjectRef{Bucket: record.S3.Bucket.Name, Key: key}, nil
}
