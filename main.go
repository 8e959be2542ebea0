package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/sqs"
	"github.com/jamiealquiza/envy"
)

const (
	defaultPredicateBucket = "my-processed-files-bucket"

	policyStrict    = "strict"
	policyPredicate = "predicate"

	modeLambda = "lambda"
	modeSQS    = "sqs"
)

type config struct {
	filesBucket        *string
	policy             *string
	match              *string
	mode               *string
	region             *string
	sqsName            *string
	sqsPollTimeout     *int64
	sqsPollMaxMessages *int64
	emptyPolls         *int
	sqsDelete          *bool
	logVerbose         *bool
}

func checkConfig(conf config) error {

	switch *conf.policy {
	case policyStrict:
		if *conf.filesBucket == "" {
			return errors.New("-files-bucket is mandatory with the strict policy")
		}
	case policyPredicate:
		if _, err := ParseMatch(*conf.match); err != nil {
			return err
		}
	default:
		return fmt.Errorf("Unknown policy %q", *conf.policy)
	}

	switch *conf.mode {
	case modeLambda:
	case modeSQS:
		if *conf.sqsName == "" ||
			*conf.sqsPollTimeout < 1 ||
			*conf.sqsPollTimeout > 20 ||
			*conf.sqsPollMaxMessages < 1 ||
			*conf.sqsPollMaxMessages > 10 ||
			*conf.emptyPolls < 1 {
			return errors.New("sqs mode needs -sqs, -poll-timeout 1-20, -poll-messages 1-10 and -empty-polls 1+")
		}
	default:
		return fmt.Errorf("Unknown mode %q", *conf.mode)
	}
	return nil
}

func newHandler(conf config, svc s3iface.S3API) (Handler, error) {

	if *conf.policy == policyStrict {
		return NewStrictRelocator(svc, *conf.filesBucket), nil
	}

	destination := *conf.filesBucket
	if destination == "" {
		destination = defaultPredicateBucket
	}

	predicate := Predicate(checkConditions)
	if *conf.match != "" {
		want, err := ParseMatch(*conf.match)
		if err != nil {
			return nil, err
		}
		predicate = MatchAll(want)
	}
	return NewPredicateRelocator(svc, destination, predicate), nil
}

func main() {

	conf := config{
		flag.String("files-bucket", "", "Name of the S3 bucket processed files are moved to [MANDATORY for strict policy]"),
		flag.String("policy", policyStrict, "Eligibility policy: strict or predicate"),
		flag.String("match", "", "Predicate policy: comma separated metadata key=value pairs that must all match"),
		flag.String("mode", modeLambda, "Run as a Lambda function (lambda) or poll S3 notifications from SQS (sqs)"),
		flag.String("region", "", "AWS region, defaults to the SDK configuration"),
		flag.String("sqs", "", "Name of the SQS queue to poll [MANDATORY for sqs mode]"),
		flag.Int64("poll-timeout", 10, "SQS slow poll timeout, 1-20"),
		flag.Int64("poll-messages", 10, "SQS maximum messages per poll, 1-10"),
		flag.Int("empty-polls", 3, "How many consecutive times to poll SQS and receive zero messages before exiting, 1+"),
		flag.Bool("delete-sqs", true, "Delete messages from SQS after processing"),
		flag.Bool("verbose", false, "Show detailed information during run"),
	}
	envy.Parse("PROCESSED")
	flag.Parse()

	if err := checkConfig(conf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}

	logInit(*conf.logVerbose)

	awsConfig := aws.NewConfig()
	if *conf.region != "" {
		awsConfig = awsConfig.WithRegion(*conf.region)
	}
	sess, err := session.NewSession(awsConfig)
	if err != nil {
		Error.Printf("AWS Session Error: %v", err)
		os.Exit(1)
	}

	handler, err := newHandler(conf, s3.New(sess))
	if err != nil {
		Error.Printf("Handler Error: %v", err)
		os.Exit(1)
	}

	if *conf.mode == modeLambda {
		lambda.Start(lambdaHandler(handler))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	gracefulStop(cancel)

	poller := &Poller{
		SQS:             sqs.New(sess),
		QueueName:       *conf.sqsName,
		PollTimeout:     *conf.sqsPollTimeout,
		PollMaxMessages: *conf.sqsPollMaxMessages,
		DeleteMessages:  *conf.sqsDelete,
	}
	poller.Run(ctx, handler, *conf.emptyPolls)
}
