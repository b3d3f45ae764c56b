package dto

import "github.com/SscSPs/academy_sponsorship/internal/core/domain"

// ReconciliationReportResponse is the operator view of an audit run.
type ReconciliationReportResponse struct {
	OverallHealthy bool                         `json:"overallHealthy"`
	Inconclusive   bool                         `json:"inconclusive,omitempty"`
	Error          string                       `json:"error,omitempty"`
	Findings       []domain.DriftFinding        `json:"findings"`
	Summary        domain.ReconciliationSummary `json:"summary"`
}

// ToReconciliationReportResponse converts a report for the API. Findings is never null.
func ToReconciliationReportResponse(r *domain.ReconciliationReport) ReconciliationReportResponse {
	findings := r.Findings
	if findings == nil {
		findings = []domain.DriftFinding{}
	}
	return ReconciliationReportResponse{
		OverallHealthy: r.OverallHealthy,
		Inconclusive:   r.Inconclusive,
		Error:          r.Error,
		Findings:       findings,
		Summary:        r.Summary,
	}
}

// RepairResponse reports the outcome of an explicit repair.
type RepairResponse struct {
	Before            ReconciliationReportResponse `json:"before"`
	Repaired          bool                         `json:"repaired"`
	SponsorsWritten   int                          `json:"sponsorsWritten"`
	RecipientsWritten int                          `json:"recipientsWritten"`
}

// ToRepairResponse converts a domain.RepairResult to its DTO
func ToRepairResponse(r *domain.RepairResult) RepairResponse {
	return RepairResponse{
		Before:            ToReconciliationReportResponse(&r.Before),
		Repaired:          r.Repaired,
		SponsorsWritten:   r.SponsorsWritten,
		RecipientsWritten: r.RecipientsWritten,
	}
}
