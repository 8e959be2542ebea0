package main

import (
	"context"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

const (
	opMoveCopy   = "Move Copy"
	opMoveDelete = "Move Delete"
)

// S3 decodes x-amz-copy-source, so "+" must go out as %2B and spaces as %20.
func copySource(obj ObjectRef) string {
	parts := strings.Split(obj.Key, "/")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(url.QueryEscape(p), "+", "%20")
	}
	return obj.Bucket + "/" + strings.Join(parts, "/")
}

// S3MoveFile copies source to destination and then deletes source.
// The delete is only attempted once the copy has succeeded.
func S3MoveFile(ctx context.Context, svc s3iface.S3API, source ObjectRef, destination ObjectRef) error {

	Debug.Printf("Moving: %s to %s", source, destination)

	inputCopy := &s3.CopyObjectInput{
		Bucket:     aws.String(destination.Bucket),
		CopySource: aws.String(copySource(source)),
		Key:        aws.String(destination.Key),
	}

	if _, errCopy := svc.CopyObjectWithContext(ctx, inputCopy); errCopy != nil {
		return newS3Error(opMoveCopy, destination, errCopy)
	}

	inputDelete := &s3.DeleteObjectInput{
		Bucket: aws.String(source.Bucket),
		Key:    aws.String(source.Key),
	}

	if _, errDelete := svc.DeleteObjectWithContext(ctx, inputDelete); errDelete != nil {
		return newS3Error(opMoveDelete, source, errDelete)
	}
	return nil
}
