package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	"adx/internal/config"
	"adx/internal/sim"
)

// S3Exporter writes final run reports as JSON objects to a bucket.
type S3Exporter struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

func NewS3Exporter(cfg *config.S3Config) *S3Exporter {
	return &S3Exporter{
		uploader: manager.NewUploader(cfg.Client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
	}
}

// ExportReport uploads the report and returns the object key.
func (e *S3Exporter) ExportReport(ctx context.Context, report *sim.FinalReport) (string, error) {
	body, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	key := fmt.Sprintf("%s/%s.json", e.prefix, report.RunID)

	_, err = e.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"run":    report.RunID,
		"bucket": e.bucket,
		"key":    key,
	}).Info("report exported")
	return key, nil
}
