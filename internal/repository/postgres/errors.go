package postgres

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes surfaced to callers.
const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
)

// IsUniqueViolation reports whether err is a unique constraint failure.
func IsUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

// IsCheckViolation reports whether err is a CHECK constraint failure, such
// as a negative positive_num.
func IsCheckViolation(err error) bool {
	return hasCode(err, codeCheckViolation)
}

// ConstraintName returns the name of the violated constraint, or "".
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

// ConstraintField maps a constraint name to the column it guards, using
// the <table>_<column>_key naming of the schema's unique constraints.
// The check constraint on positive_num maps to "positive_num".
func ConstraintField(err error) string {
	name := ConstraintName(err)
	switch {
	case name == "":
		return ""
	case name == "positive_num_non_negative":
		return "positive_num"
	}
	for _, table := range []string{"all_type_fields_", "accounts_"} {
		if strings.HasPrefix(name, table) {
			return strings.TrimSuffix(strings.TrimPrefix(name, table), "_key")
		}
	}
	return name
}

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}
