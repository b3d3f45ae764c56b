package s3

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestArchive_WritesReportJSON(t *testing.T) {
	putter := &fakePutter{}
	archiver := &Archiver{client: putter, bucket: "audit-reports"}
	report := &domain.ReconciliationReport{
		OverallHealthy: false,
		Findings: []domain.DriftFinding{
			{EntityType: domain.EntitySponsor, EntityID: "google:1", Field: domain.FieldTotalDonated, Stored: "999.00", Recomputed: "80.00"},
		},
		StartedAt: time.Date(2025, 3, 9, 14, 5, 6, 0, time.UTC),
	}

	location, err := archiver.Archive(context.Background(), report)
	require.NoError(t, err)

	require.NotNil(t, putter.input)
	assert.Equal(t, "audit-reports", *putter.input.Bucket)
	assert.True(t, strings.HasPrefix(*putter.input.Key, "reconciliation/2025/03/09/140506-"))
	assert.Equal(t, "s3://audit-reports/"+*putter.input.Key, location)
	assert.Equal(t, "application/json", *putter.input.ContentType)
	assert.Equal(t, "false", putter.input.Metadata["overall-healthy"])

	var stored domain.ReconciliationReport
	require.NoError(t, json.Unmarshal(putter.body, &stored))
	require.Len(t, stored.Findings, 1)
	assert.Equal(t, "999.00", stored.Findings[0].Stored)
}

func TestArchive_UploadFailure(t *testing.T) {
	archiver := &Archiver{client: &fakePutter{err: errors.New("access denied")}, bucket: "audit-reports"}
	_, err := archiver.Archive(context.Background(), &domain.ReconciliationReport{OverallHealthy: true})
	assert.ErrorContains(t, err, "access denied")
}
