// Package awsconfig loads AWS SDK configuration for the blob store and
// secret vault. When an endpoint override is set (LocalStack), static test
// credentials are used so no real AWS account is ever touched.
package awsconfig

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

const localRegion = "us-east-1"

// Load builds an aws.Config. endpointURL selects the emulated cloud; empty
// means real AWS resolution through the default credential chain.
func Load(ctx context.Context, endpointURL string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if endpointURL != "" {
		opts = append(opts,
			config.WithRegion(localRegion),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}

// NewS3Client builds an S3 client. LocalStack needs path-style addressing
// because bucket subdomains do not resolve there.
func NewS3Client(cfg aws.Config, endpointURL string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
			o.UsePathStyle = true
		}
	})
}

// NewSecretsManagerClient builds a Secrets Manager client.
func NewSecretsManagerClient(cfg aws.Config, endpointURL string) *secretsmanager.Client {
	return secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) {
		if endpointURL != "" {
			o.BaseEndpoint = aws.String(endpointURL)
		}
	})
}
