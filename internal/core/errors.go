package core

import "errors"

var (
	ErrDuplicateUser      = errors.New("username is already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidUsername    = errors.New("username must not be empty")
	ErrInvalidSecret      = errors.New("password must not be empty")
	ErrInvalidAmount      = errors.New("amount must be a positive number with at most two decimal places")
	ErrInvalidDate        = errors.New("date must be a valid calendar date in YYYY-MM-DD form")
	ErrInvalidKind        = errors.New("type must be Income or Expense")
	ErrInvalidCategory    = errors.New("category must not be empty (max 100 characters)")
	ErrNotFound           = errors.New("transaction not found")
	ErrExportFailed       = errors.New("export failed")
	ErrStoreUnavailable   = errors.New("storage is unavailable, please try again")
)

// known lists the errors whose text is safe to show to a user.
var known = []error{
	ErrDuplicateUser,
	ErrInvalidCredentials,
	ErrInvalidUsername,
	ErrInvalidSecret,
	ErrInvalidAmount,
	ErrInvalidDate,
	ErrInvalidKind,
	ErrInvalidCategory,
	ErrNotFound,
	ErrExportFailed,
	ErrStoreUnavailable,
}

// Message returns a human-readable description of err naming the violated
// constraint. Errors outside the taxonomy collapse to a generic message so
// driver details and identifiers never reach the user.
func Message(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return k.Error()
		}
	}
	return "internal error"
}

// IsValidation reports whether err is caused by rejected user input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidKind) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidUsername) ||
		errors.Is(err, ErrInvalidSecret)
}
