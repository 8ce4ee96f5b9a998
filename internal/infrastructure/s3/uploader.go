// Package s3 sube los archivos de documentos a un bucket S3 (opcionalmente servido por CloudFront).
package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/jhoicas/channah-state/pkg/config"
)

// PutObjectAPI subconjunto del cliente S3 que usa el uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader implementa ports.FileUploader sobre S3.
type Uploader struct {
	client           PutObjectAPI
	bucket           string
	region           string
	cloudFrontDomain string
}

// NewUploader carga la configuración AWS con credenciales estáticas.
func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: cargar configuración AWS: %w", err)
	}
	return NewUploaderWithClient(s3.NewFromConfig(sdkConfig), cfg), nil
}

// NewUploaderWithClient permite inyectar el cliente (tests, endpoints compatibles).
func NewUploaderWithClient(client PutObjectAPI, cfg config.S3Config) *Uploader {
	return &Uploader{
		client:           client,
		bucket:           cfg.Bucket,
		region:           cfg.Region,
		cloudFrontDomain: cfg.CloudFrontDomain,
	}
}

// Upload sube body bajo objectKey y devuelve la URL pública (CloudFront si está configurado).
func (u *Uploader) Upload(ctx context.Context, body io.Reader, objectKey, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3: subir %s: %w", objectKey, err)
	}
	if u.cloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.cloudFrontDomain, objectKey), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, objectKey), nil
}
