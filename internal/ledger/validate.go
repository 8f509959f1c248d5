package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const timeLayout = "15:04"

// Validate checks the date, time and pay of a new game.
func (n NewGame) Validate() error {
	if err := validateDate(n.Date); err != nil {
		return err
	}

	if err := validateTime(n.Time); err != nil {
		return err
	}

	return validateNonNegative("pay", n.Pay)
}

// Validate checks the date and amount of a new expense.
func (n NewExpense) Validate() error {
	if err := validateDate(n.Date); err != nil {
		return err
	}

	return validateNonNegative("amount", n.Amount)
}

// Validate checks the date, distance and rate of a new trip.
func (n NewMileage) Validate() error {
	if err := validateDate(n.Date); err != nil {
		return err
	}

	if err := validateNonNegative("miles", n.Miles); err != nil {
		return err
	}

	if n.Rate != nil {
		return validateNonNegative("rate", *n.Rate)
	}

	return nil
}

// Validate checks the fields that are set.
func (u GameUpdate) Validate() error {
	if v, ok := u.Date.Get(); ok {
		if err := validateDate(v); err != nil {
			return err
		}
	}

	if v, ok := u.Time.Get(); ok {
		if err := validateTime(v); err != nil {
			return err
		}
	}

	if v, ok := u.Pay.Get(); ok {
		return validateNonNegative("pay", v)
	}

	return nil
}

func validateDate(s string) error {
	if s == "" {
		return fmt.Errorf("%w: date is empty", ErrInvalid)
	}

	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalid, s)
	}

	return nil
}

// validateTime accepts an empty time; calendars fall back to noon.
func validateTime(s string) error {
	if s == "" {
		return nil
	}

	if _, err := time.Parse(timeLayout, s); err != nil {
		return fmt.Errorf("%w: time %q is not HH:MM", ErrInvalid, s)
	}

	return nil
}

func validateNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalid, field, d)
	}

	return nil
}
