package customer

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+$`)

// Validate turns a raw row into a Record, or reports the first rule it breaks.
//
// Rules run in a fixed order: id, email, loyalty_points, signup_date,
// first_name, last_name. Validate has no side effects.
func Validate(row Row) (Record, *Rejection) {
	id, rej := require(row, ColumnID)
	if rej != nil {
		return Record{}, rej
	}

	email, rej := require(row, ColumnEmail)
	if rej != nil {
		return Record{}, rej
	}
	if !emailPattern.MatchString(email) {
		return Record{}, &Rejection{Kind: InvalidEmail, Column: ColumnEmail, Value: email}
	}

	points, rej := loyaltyPoints(row)
	if rej != nil {
		return Record{}, rej
	}

	signup, rej := signupDate(row)
	if rej != nil {
		return Record{}, rej
	}

	firstName, rej := require(row, ColumnFirstName)
	if rej != nil {
		return Record{}, rej
	}

	lastName, rej := require(row, ColumnLastName)
	if rej != nil {
		return Record{}, rej
	}

	return Record{
		id:            id,
		firstName:     firstName,
		lastName:      lastName,
		email:         email,
		signupDate:    signup,
		loyaltyPoints: points,
	}, nil
}

// require returns the trimmed value of column, rejecting absent or blank cells.
func require(row Row, column string) (string, *Rejection) {
	raw, ok := row[column]
	if !ok {
		return "", missing(column)
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return "", missing(column)
	}

	return value, nil
}

func loyaltyPoints(row Row) (int, *Rejection) {
	value, rej := require(row, ColumnLoyaltyPoints)
	if rej != nil {
		return 0, rej
	}

	// Bounded to 32 bits, like the integer column it is loaded from.
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return 0, &Rejection{Kind: NotAnInteger, Column: ColumnLoyaltyPoints, Value: value}
	}
	if n < 0 {
		return 0, &Rejection{Kind: NegativeLoyaltyPoints, Column: ColumnLoyaltyPoints, Value: value}
	}

	return int(n), nil
}

func signupDate(row Row) (time.Time, *Rejection) {
	value, rej := require(row, ColumnSignupDate)
	if rej != nil {
		return time.Time{}, rej
	}

	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &Rejection{Kind: InvalidDate, Column: ColumnSignupDate, Value: value}
	}

	return parsed, nil
}
