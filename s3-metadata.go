package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// keys in lower case
type Metadata map[string]string

type S3Error struct {
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *S3Error) Error() string {
	return fmt.Sprintf("S3 %s Error: s3://%s/%s (%v)", e.Op, e.Bucket, e.Key, e.Err)
}

func (e *S3Error) Unwrap() error {
	return e.Err
}

func newS3Error(op string, obj ObjectRef, err error) *S3Error {
	return &S3Error{Op: op, Bucket: obj.Bucket, Key: obj.Key, Err: err}
}

var credentialsErrorCodes = map[string]bool{
	"NoCredentialProviders":    true,
	"EnvAccessKeyNotFound":     true,
	"EnvSecretNotFound":        true,
	"SharedCredsLoad":          true,
	"SharedCredsAccessKey":     true,
	"EC2RoleRequestError":      true,
	"CredentialsEndpointError": true,
}

func errorCode(err error) string {
	var aerr awserr.Error
	if errors.As(err, &aerr) {
		return aerr.Code()
	}
	return ""
}

func IsCredentialsError(err error) bool {
	return credentialsErrorCodes[errorCode(err)]
}

// IsNotFound reports whether err means the bucket or the object does not exist.
func IsNotFound(err error) bool {
	switch errorCode(err) {
	case s3.ErrCodeNoSuchBucket, s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	return false
}

func toMetadata(m map[string]*string) Metadata {
	md := make(Metadata, len(m))
	for k, v := range m {
		md[strings.ToLower(k)] = aws.StringValue(v)
	}
	return md
}

// FetchMetadata reads the user metadata of obj. With fullObject set it
// issues a GetObject and discards the body, otherwise a HeadObject.
func FetchMetadata(ctx context.Context, svc s3iface.S3API, obj ObjectRef, fullObject bool) (Metadata, error) {

	if fullObject {
		Debug.Printf("Fetching object %s", obj)
		out, err := svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(obj.Bucket),
			Key:    aws.String(obj.Key),
		})
		if err != nil {
			return nil, newS3Error("GetObject", obj, err)
		}
		if out.Body != nil {
			out.Body.Close()
		}
		return toMetadata(out.Metadata), nil
	}

	Debug.Printf("Fetching metadata %s", obj)
	out, err := svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(obj.Bucket),
		Key:    aws.String(obj.Key),
	})
	if err != nil {
		return nil, newS3Error("HeadObject", obj, err)
	}
	return toMetadata(out.Metadata), nil
}
