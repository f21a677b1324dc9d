package customer

import "fmt"

// RejectionKind tags why a row failed validation.
type RejectionKind int

const (
	MissingField RejectionKind = iota + 1
	InvalidEmail
	NotAnInteger
	NegativeLoyaltyPoints
	InvalidDate
)

func (k RejectionKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case InvalidEmail:
		return "invalid_email"
	case NotAnInteger:
		return "not_an_integer"
	case NegativeLoyaltyPoints:
		return "negative_loyalty_points"
	case InvalidDate:
		return "invalid_date"
	default:
		return "unknown"
	}
}

// Rejection describes a row that did not pass validation.
// Column is always set; Value holds the offending (trimmed) input when there was one.
type Rejection struct {
	Kind   RejectionKind
	Column string
	Value  string
}

func (r *Rejection) Error() string {
	switch r.Kind {
	case MissingField:
		return fmt.Sprintf("%s is required", r.Column)
	case InvalidEmail:
		return fmt.Sprintf("invalid email: %q", r.Value)
	case NotAnInteger:
		return fmt.Sprintf("%s is not an integer: %q", r.Column, r.Value)
	case NegativeLoyaltyPoints:
		return fmt.Sprintf("%s must not be negative: %q", r.Column, r.Value)
	case InvalidDate:
		return fmt.Sprintf("%s must be an ISO date (yyyy-MM-dd): %q", r.Column, r.Value)
	default:
		return fmt.Sprintf("%s rejected: %q", r.Column, r.Value)
	}
}

func missing(column string) *Rejection {
	return &Rejection{Kind: MissingField, Column: column}
}
