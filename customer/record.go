// Package customer maps raw CSV rows onto validated customer records.
package customer

import "time"

// Column names of the customer file header.
const (
	ColumnID            = "id"
	ColumnFirstName     = "first_name"
	ColumnLastName      = "last_name"
	ColumnEmail         = "email"
	ColumnSignupDate    = "signup_date"
	ColumnLoyaltyPoints = "loyalty_points"
)

// DateLayout is the only accepted signup_date format (ISO-8601 calendar date).
const DateLayout = "2006-01-02"

// Columns lists the header columns in their canonical order.
var Columns = []string{
	ColumnID,
	ColumnFirstName,
	ColumnLastName,
	ColumnEmail,
	ColumnSignupDate,
	ColumnLoyaltyPoints,
}

// Row is one data line of the source file keyed by column name.
// A column missing from the map was absent on that line.
type Row map[string]string

// Record is a validated customer. It can only be obtained from Validate.
type Record struct {
	id            string
	firstName     string
	lastName      string
	email         string
	signupDate    time.Time
	loyaltyPoints int
}

func (r Record) ID() string            { return r.id }
func (r Record) FirstName() string     { return r.firstName }
func (r Record) LastName() string      { return r.lastName }
func (r Record) Email() string         { return r.email }
func (r Record) SignupDate() time.Time { return r.signupDate }
func (r Record) LoyaltyPoints() int    { return r.loyaltyPoints }

// Payload is the wire representation of a Record.
type Payload struct {
	ID            string `json:"id" msgpack:"id"`
	FirstName     string `json:"firstName" msgpack:"firstName"`
	LastName      string `json:"lastName" msgpack:"lastName"`
	Email         string `json:"email" msgpack:"email"`
	SignupDate    string `json:"signupDate" msgpack:"signupDate"`
	LoyaltyPoints int    `json:"loyaltyPoints" msgpack:"loyaltyPoints"`
}

// Payload returns the record in its published shape.
func (r Record) Payload() Payload {
	return Payload{
		ID:            r.id,
		FirstName:     r.firstName,
		LastName:      r.lastName,
		Email:         r.email,
		SignupDate:    r.signupDate.Format(DateLayout),
		LoyaltyPoints: r.loyaltyPoints,
	}
}
