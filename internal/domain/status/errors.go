package status

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/labsite/internal/domain/model"
)

// Sentinel kinds for classification issues. Every issue in Result.Issues
// matches exactly one of these with errors.Is.
var (
	ErrMissingReference = errors.New("record references unknown member")
	ErrAmbiguousDate    = errors.New("date could not be parsed")
	ErrUnrankedRole     = errors.New("role missing from hierarchy")
	ErrNoStatus         = errors.New("member has no education or experience")
)

// MissingReferenceError is reported when a detail record points at a member
// that was never loaded. The record is dropped.
type MissingReferenceError struct {
	Kind     string
	MemberID model.MemberID
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("%s record for %q: %v", e.Kind, e.MemberID, ErrMissingReference)
}

func (e *MissingReferenceError) Unwrap() error { return ErrMissingReference }

// AmbiguousDateError is reported for a date field that was present but not
// understood. The date is treated as unknown.
type AmbiguousDateError struct {
	MemberID model.MemberID
	Field    string
	Value    string
}

func (e *AmbiguousDateError) Error() string {
	return fmt.Sprintf("%s of %q is %q: %v", e.Field, e.MemberID, e.Value, ErrAmbiguousDate)
}

func (e *AmbiguousDateError) Unwrap() error { return ErrAmbiguousDate }

// UnrankedRoleWarning lists the resolved roles that have no hierarchy rank.
type UnrankedRoleWarning struct {
	Roles []string
}

func (e *UnrankedRoleWarning) Error() string {
	return fmt.Sprintf("roles not in hierarchy (sorted last): %s", strings.Join(e.Roles, ", "))
}

func (e *UnrankedRoleWarning) Unwrap() error { return ErrUnrankedRole }

// NoStatusDecidable is reported for a member without any education or
// experience record.
type NoStatusDecidable struct {
	MemberID model.MemberID
	Policy   Policy
}

func (e *NoStatusDecidable) Error() string {
	return fmt.Sprintf("member %q: %v (policy %s)", e.MemberID, ErrNoStatus, e.Policy)
}

func (e *NoStatusDecidable) Unwrap() error { return ErrNoStatus }
