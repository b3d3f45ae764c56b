package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/SscSPs/academy_sponsorship/internal/apperrors"
	"github.com/SscSPs/academy_sponsorship/internal/cli"
	"github.com/SscSPs/academy_sponsorship/internal/core/domain"
	portsrepo "github.com/SscSPs/academy_sponsorship/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/academy_sponsorship/internal/core/ports/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) ApplyDonation(ctx context.Context, tx portsrepo.LedgerTx, donation domain.Donation) error {
	return m.Called(ctx, tx, donation).Error(0)
}

func (m *MockReconciliationService) Audit(ctx context.Context) (*domain.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconciliationReport), args.Error(1)
}

func (m *MockReconciliationService) Repair(ctx context.Context) (*domain.RepairResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RepairResult), args.Error(1)
}

type fakeArchiver struct {
	archived []*domain.ReconciliationReport
	err      error
}

func (f *fakeArchiver) Archive(_ context.Context, report *domain.ReconciliationReport) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.archived = append(f.archived, report)
	return "s3://reports/reconciliation/test.json", nil
}

type CLITestSuite struct {
	suite.Suite
	recon    *MockReconciliationService
	archiver *fakeArchiver
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
}

func TestCLITestSuite(t *testing.T) {
	suite.Run(t, new(CLITestSuite))
}

func (s *CLITestSuite) SetupTest() {
	s.recon = new(MockReconciliationService)
	s.archiver = &fakeArchiver{}
	s.stdout = &bytes.Buffer{}
	s.stderr = &bytes.Buffer{}
}

func (s *CLITestSuite) run(args ...string) int {
	env := cli.Environment{Stdout: s.stdout, Stderr: s.stderr}
	newArchiver := func(context.Context) (portssvc.ReportArchiver, error) {
		return s.archiver, nil
	}
	return cli.Run(context.Background(), env, args, s.recon, newArchiver)
}

func healthyReport() *domain.ReconciliationReport {
	return &domain.ReconciliationReport{
		OverallHealthy: true,
		Findings:       []domain.DriftFinding{},
		Epsilon:        decimal.NewFromInt(1),
	}
}

func (s *CLITestSuite) TestAudit_Healthy() {
	s.recon.On("Audit", mock.Anything).Return(healthyReport(), nil).Once()

	code := s.run("audit")

	s.Equal(cli.ExitOK, code)
	var report domain.ReconciliationReport
	require.NoError(s.T(), json.Unmarshal(s.stdout.Bytes(), &report))
	s.True(report.OverallHealthy)
	s.Empty(s.archiver.archived)
	s.recon.AssertExpectations(s.T())
}

func (s *CLITestSuite) TestAudit_DriftExitsWithDriftCode() {
	report := healthyReport()
	report.OverallHealthy = false
	report.Findings = []domain.DriftFinding{{}}
	s.recon.On("Audit", mock.Anything).Return(report, nil).Once()

	code := s.run("audit", "--archive")

	s.Equal(cli.ExitDrift, code)
	s.Contains(s.stderr.String(), "1 finding(s)")
	s.Contains(s.stderr.String(), "s3://reports/reconciliation/test.json")
	require.Len(s.T(), s.archiver.archived, 1)
	s.Same(report, s.archiver.archived[0])
}

func (s *CLITestSuite) TestAudit_InconclusiveStillPrintsReport() {
	report := &domain.ReconciliationReport{Inconclusive: true, Error: "snapshot failed"}
	s.recon.On("Audit", mock.Anything).
		Return(report, fmt.Errorf("%w: snapshot failed", apperrors.ErrAuditInconclusive)).Once()

	code := s.run("audit")

	s.Equal(cli.ExitInconclusive, code)
	s.Contains(s.stdout.String(), `"inconclusive": true`)
}

func (s *CLITestSuite) TestAudit_ArchiveFailure() {
	s.archiver.err = errors.New("access denied")
	s.recon.On("Audit", mock.Anything).Return(healthyReport(), nil).Once()

	code := s.run("audit", "--archive")

	s.Equal(cli.ExitFailure, code)
	s.Contains(s.stderr.String(), "access denied")
}

func (s *CLITestSuite) TestRepair() {
	result := &domain.RepairResult{Repaired: true, SponsorsWritten: 2, RecipientsWritten: 1}
	s.recon.On("Repair", mock.Anything).Return(result, nil).Once()

	code := s.run("repair")

	s.Equal(cli.ExitOK, code)
	var got domain.RepairResult
	require.NoError(s.T(), json.Unmarshal(s.stdout.Bytes(), &got))
	s.True(got.Repaired)
	s.Equal(2, got.SponsorsWritten)
}

func (s *CLITestSuite) TestRepair_PartialWriteRisk() {
	s.recon.On("Repair", mock.Anything).Return(nil, apperrors.ErrPartialWriteRisk).Once()

	code := s.run("repair")

	s.Equal(cli.ExitFailure, code)
	s.Empty(s.stdout.String())
}

func TestRun_UnknownCommand(t *testing.T) {
	stderr := &bytes.Buffer{}
	env := cli.Environment{Stdout: &bytes.Buffer{}, Stderr: stderr}

	code := cli.Run(context.Background(), env, []string{"explode"}, new(MockReconciliationService), nil)

	assert.Equal(t, cli.ExitFailure, code)
	assert.NotEmpty(t, stderr.String())
}
