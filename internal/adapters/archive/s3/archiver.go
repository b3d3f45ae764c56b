// Package s3 archives reconciliation reports to an S3 bucket for the audit trail.
package s3

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// objectPutter is the part of the S3 client the archiver uses.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver writes each report as one JSON object under reconciliation/YYYY/MM/DD/.
type Archiver struct {
	client objectPutter
	bucket string
}

// NewArchiver loads the default AWS credential chain (env, shared config, instance role).
func NewArchiver(ctx context.Context, bucket string) (*Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("report archive bucket is not configured")
	}
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &Archiver{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

var _ portssvc.ReportArchiver = (*Archiver)(nil)

// Archive returns the s3:// location of the stored report.
func (a *Archiver) Archive(ctx context.Context, report *domain.ReconciliationReport) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode reconciliation report: %w", err)
	}

	key := objectKey(report)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"overall-healthy": fmt.Sprintf("%t", report.OverallHealthy),
			"inconclusive":    fmt.Sprintf("%t", report.Inconclusive),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload reconciliation report to S3: %w", err)
	}
	return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
}

func objectKey(report *domain.ReconciliationReport) string {
	at := report.StartedAt
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	return fmt.Sprintf("reconciliation/%s/%s-%s.json", at.Format("2006/01/02"), at.Format("150405"), uuid.NewString()[:8])
}
