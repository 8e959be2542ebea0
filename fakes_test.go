package main

import (
	"io/ioutil"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

type s3Call struct {
	Op     string
	Bucket string
	Key    string
	Source string
}

type fakeS3 struct {
	s3iface.S3API

	metadata map[string]*string
	fetchErr error
	copyErr  error
	delErr   error
	calls    []s3Call
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.calls = append(f.calls, s3Call{Op: "GetObject", Bucket: *in.Bucket, Key: *in.Key})
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &s3.GetObjectOutput{
		Body:     ioutil.NopCloser(strings.NewReader("body")),
		Metadata: f.metadata,
	}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	f.calls = append(f.calls, s3Call{Op: "HeadObject", Bucket: *in.Bucket, Key: *in.Key})
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &s3.HeadObjectOutput{Metadata: f.metadata}, nil
}

func (f *fakeS3) CopyObjectWithContext(_ aws.Context, in *s3.CopyObjectInput, _ ...request.Option) (*s3.CopyObjectOutput, error) {
	f.calls = append(f.calls, s3Call{Op: "CopyObject", Bucket: *in.Bucket, Key: *in.Key, Source: *in.CopySource})
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	return &s3.CopyObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.calls = append(f.calls, s3Call{Op: "DeleteObject", Bucket: *in.Bucket, Key: *in.Key})
	if f.delErr != nil {
		return nil, f.delErr
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ops() []string {
	ops := make([]string, len(f.calls))
	for i, c := range f.calls {
		ops[i] = c.Op
	}
	return ops
}

func s3Event(bucket, key string) events.S3Event {
	return events.S3Event{
		Records: []events.S3EventRecord{{
			EventSource: "aws:s3",
			EventName:   "ObjectCreated:Put",
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: bucket},
				Object: events.S3Object{Key: key},
			},
		}},
	}
}

func userMetadata(kv ...string) map[string]*string {
	m := map[string]*string{}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i]] = aws.String(kv[i+1])
	}
	return m
}

var (
	errNoCredentials = awserr.New("NoCredentialProviders", "no valid providers in chain", nil)
	errNoSuchKey     = awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	errAccessDenied  = awserr.New("AccessDenied", "Access Denied", nil)
)
