package domain

import (
	"time"

	"github.com/google/uuid"
)

// AMLCheckType names one rule of the AML engine.
type AMLCheckType string

const (
	AMLCheckVelocity      AMLCheckType = "VELOCITY"
	AMLCheckDepositVolume AMLCheckType = "DEPOSIT_VOLUME"
	AMLCheckAnomaly       AMLCheckType = "ANOMALY"
	AMLCheckTradeVolume   AMLCheckType = "TRADE_VOLUME"
)

// AMLSeverity orders how urgently a finding must be handled.
type AMLSeverity string

const (
	AMLSeverityLow      AMLSeverity = "LOW"
	AMLSeverityMedium   AMLSeverity = "MEDIUM"
	AMLSeverityHigh     AMLSeverity = "HIGH"
	AMLSeverityCritical AMLSeverity = "CRITICAL"
)

// Rank returns the ordinal of s; unknown values rank below LOW.
func (s AMLSeverity) Rank() int {
	switch s {
	case AMLSeverityLow:
		return 1
	case AMLSeverityMedium:
		return 2
	case AMLSeverityHigh:
		return 3
	case AMLSeverityCritical:
		return 4
	}
	return 0
}

// AMLResult is the verdict of a single check or a whole run.
type AMLResult string

const (
	AMLResultPass   AMLResult = "PASS"
	AMLResultReview AMLResult = "REVIEW"
	AMLResultFail   AMLResult = "FAIL"
)

// AMLCheck is one persisted check outcome.
type AMLCheck struct {
	ID         uuid.UUID    `json:"id"`
	AccountID  uuid.UUID    `json:"account_id"`
	CheckType  AMLCheckType `json:"check_type"`
	Severity   AMLSeverity  `json:"severity"`
	Result     AMLResult    `json:"result"`
	Metadata   AMLMetadata  `json:"metadata"`
	ResolvedBy *uuid.UUID   `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time   `json:"resolved_at,omitempty"`
	Notes      *string      `json:"notes,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// AMLMetadata records what a check observed against which limit.
type AMLMetadata struct {
	Observed  string `json:"observed"`
	Threshold string `json:"threshold"`
	Window    string `json:"window"`
}

// IsResolved returns true once an admin has reviewed the check.
func (c *AMLCheck) IsResolved() bool {
	return c.ResolvedAt != nil
}

// AMLReport is the aggregated outcome of one run over an account.
type AMLReport struct {
	AccountID       uuid.UUID   `json:"account_id"`
	OverallResult   AMLResult   `json:"overall_result"`
	HighestSeverity AMLSeverity `json:"highest_severity"`
	Checks          []AMLCheck  `json:"checks"`
	Frozen          bool        `json:"frozen"`
}

// RequiresFreeze is true when any check failed at CRITICAL severity.
func (r *AMLReport) RequiresFreeze() bool {
	for _, c := range r.Checks {
		if c.Result == AMLResultFail && c.Severity == AMLSeverityCritical {
			return true
		}
	}
	return false
}

// FreezingCheck returns the first FAIL/CRITICAL check, if any.
func (r *AMLReport) FreezingCheck() *AMLCheck {
	for i := range r.Checks {
		if r.Checks[i].Result == AMLResultFail && r.Checks[i].Severity == AMLSeverityCritical {
			return &r.Checks[i]
		}
	}
	return nil
}

// AggregateAML folds check outcomes into an overall result and severity.
// FAIL beats REVIEW beats PASS; severity is the max over checks that share
// the overall result, LOW when everything passed.
func AggregateAML(accountID uuid.UUID, checks []AMLCheck) *AMLReport {
	report := &AMLReport{
		AccountID:       accountID,
		OverallResult:   AMLResultPass,
		HighestSeverity: AMLSeverityLow,
		Checks:          checks,
	}

	for _, c := range checks {
		if c.Result == AMLResultFail {
			report.OverallResult = AMLResultFail
			break
		}
		if c.Result == AMLResultReview {
			report.OverallResult = AMLResultReview
		}
	}
	if report.OverallResult == AMLResultPass {
		return report
	}

	for _, c := range checks {
		if c.Result == report.OverallResult && c.Severity.Rank() > report.HighestSeverity.Rank() {
			report.HighestSeverity = c.Severity
		}
	}
	return report
}
