package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config {
	var (
		filesBucket = "processed"
		policy      = policyStrict
		match       = ""
		mode        = modeLambda
		region      = ""
		sqsName     = ""
		pollTimeout = int64(10)
		pollMax     = int64(10)
		emptyPolls  = 3
		sqsDelete   = true
		verbose     = false
	)
	return config{&filesBucket, &policy, &match, &mode, &region, &sqsName, &pollTimeout, &pollMax, &emptyPolls, &sqsDelete, &verbose}
}

func TestCheckConfig(t *testing.T) {

	assert.NoError(t, checkConfig(testConfig()))

	conf := testConfig()
	*conf.filesBucket = ""
	assert.Error(t, checkConfig(conf), "strict needs a bucket")

	conf = testConfig()
	*conf.filesBucket = ""
	*conf.policy = policyPredicate
	assert.NoError(t, checkConfig(conf), "predicate has a default bucket")

	conf = testConfig()
	*conf.policy = policyPredicate
	*conf.match = "owner"
	assert.Error(t, checkConfig(conf))

	conf = testConfig()
	*conf.policy = "lenient"
	assert.Error(t, checkConfig(conf))

	conf = testConfig()
	*conf.mode = modeSQS
	assert.Error(t, checkConfig(conf), "sqs needs a queue")

	*conf.sqsName = "uploads-events"
	assert.NoError(t, checkConfig(conf))

	*conf.sqsPollTimeout = 21
	assert.Error(t, checkConfig(conf))

	*conf.sqsPollTimeout = 10
	*conf.sqsPollMaxMessages = 11
	assert.Error(t, checkConfig(conf))

	*conf.sqsPollMaxMessages = 10
	*conf.emptyPolls = 0
	assert.Error(t, checkConfig(conf))

	conf = testConfig()
	*conf.mode = "daemon"
	assert.Error(t, checkConfig(conf))
}

func TestNewHandler(t *testing.T) {

	svc := &fakeS3{}

	h, err := newHandler(testConfig(), svc)
	require.NoError(t, err)
	r := h.(*Relocator)
	assert.Equal(t, "processed", r.Destination)
	assert.True(t, r.FullObject)
	assert.True(t, r.QuietCredentials)

	conf := testConfig()
	*conf.policy = policyPredicate
	*conf.filesBucket = ""
	h, err = newHandler(conf, svc)
	require.NoError(t, err)
	r = h.(*Relocator)
	assert.Equal(t, defaultPredicateBucket, r.Destination)
	assert.False(t, r.FullObject)
	assert.False(t, r.QuietCredentials)
	assert.ErrorIs(t, r.Check(Metadata{"owner": "alice"}), ErrRejected)

	*conf.match = "owner=alice"
	h, err = newHandler(conf, svc)
	require.NoError(t, err)
	assert.NoError(t, h.(*Relocator).Check(Metadata{"owner": "alice"}))
}

func TestLambdaHandler(t *testing.T) {

	ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-1"})

	ok := &fakeHandler{}
	assert.NoError(t, lambdaHandler(ok)(ctx, s3Event("uploads", "a.txt")))
	assert.Equal(t, []string{"a.txt"}, ok.keys)

	failing := &fakeHandler{err: errors.New("boom")}
	assert.EqualError(t, lambdaHandler(failing)(context.Background(), s3Event("uploads", "a.txt")), "boom")
}

func TestLambdaScenario(t *testing.T) {

	svc := &fakeS3{metadata: validMetadata()}
	handle := lambdaHandler(NewStrictRelocator(svc, "processed"))

	require.NoError(t, handle(context.Background(), s3Event("uploads", "a.txt")))
	assert.Equal(t, []string{"GetObject", "CopyObject", "DeleteObject"}, svc.ops())

	svc = &fakeS3{metadata: userMetadata("Content-Type", "text/plain", "Upload-Date", "2024-01-01")}
	handle = lambdaHandler(NewStrictRelocator(svc, "processed"))

	require.NoError(t, handle(context.Background(), s3Event("uploads", "a.txt")))
	assert.Equal(t, []string{"GetObject"}, svc.ops())

	assert.ErrorIs(t, handle(context.Background(), events.S3Event{}), ErrNoRecords)
}
