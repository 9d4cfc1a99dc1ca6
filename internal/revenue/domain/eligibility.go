package domain

import (
	"time"

	"github.com/smallbiznis/factura/internal/events"
	invoicedomain "github.com/smallbiznis/factura/internal/invoice/domain"
)

// EligibilityOutcome is a classification, not an error: ineligible invoices
// are expected input and are skipped, never rejected.
type EligibilityOutcome struct {
	Eligible bool
	Reason   string
}

// Skip reasons reported on ineligible outcomes.
const (
	ReasonIneligibleStatus   = "ineligible_status"
	ReasonNonPositiveAmount  = "non_positive_amount"
	ReasonUnresolvablePeriod = "unresolvable_period"
)

// ChangeClassification categorizes an invoice update's impact on the
// revenue aggregate.
type ChangeClassification string

const (
	ChangeNone                 ChangeClassification = "no_relevant_change"
	ChangeEligibleToIneligible ChangeClassification = "eligible_to_ineligible"
	ChangeIneligibleToEligible ChangeClassification = "ineligible_to_eligible"
	ChangeEligibleStatusChange ChangeClassification = "eligible_status_change"
	ChangeEligibleAmountChange ChangeClassification = "eligible_amount_change"
)

// CountsTowardRevenue reports whether a status contributes to a bucket.
func CountsTowardRevenue(status invoicedomain.InvoiceStatus) bool {
	return status == invoicedomain.InvoiceStatusPaid || status == invoicedomain.InvoiceStatusPending
}

// Classifier applies eligibility rules under one set of period bounds.
type Classifier struct {
	Bounds PeriodBounds
}

// Eligibility decides whether a snapshot contributes to revenue: status must
// be paid or pending, amount positive and the date resolvable to a period.
// Pure and total.
func (c Classifier) Eligibility(snap events.InvoiceSnapshot, now time.Time) EligibilityOutcome {
	if !CountsTowardRevenue(snap.Status) {
		return EligibilityOutcome{Reason: ReasonIneligibleStatus}
	}
	if snap.Amount <= 0 {
		return EligibilityOutcome{Reason: ReasonNonPositiveAmount}
	}
	if _, err := ResolvePeriod(snap.Date, now, c.Bounds); err != nil {
		return EligibilityOutcome{Reason: ReasonUnresolvablePeriod}
	}
	return EligibilityOutcome{Eligible: true}
}

// ClassifyChange categorizes the transition between two snapshots of the
// same invoice. A simultaneous status+amount change classifies as a status
// change: the dispatcher applies both sides in one bucket move, so the
// status check deliberately precedes the amount check.
func (c Classifier) ClassifyChange(previous, current events.InvoiceSnapshot, now time.Time) ChangeClassification {
	prevEligible := c.Eligibility(previous, now).Eligible
	curEligible := c.Eligibility(current, now).Eligible

	switch {
	case !prevEligible && !curEligible:
		return ChangeNone
	case prevEligible && !curEligible:
		return ChangeEligibleToIneligible
	case !prevEligible && curEligible:
		return ChangeIneligibleToEligible
	case previous.Status != current.Status:
		return ChangeEligibleStatusChange
	case previous.Amount != current.Amount:
		return ChangeEligibleAmountChange
	default:
		return ChangeNone
	}
}
