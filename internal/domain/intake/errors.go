package intake

import "fmt"

// Error codes surfaced to API clients. Each maps to a stable HTTP status
// in the transport layer.
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeCaseNotFound          = "CASE_NOT_FOUND"
	CodeCaseBusy              = "CASE_BUSY"
	CodeContractAlreadyExists = "CONTRACT_ALREADY_EXISTS"
	CodeMissingIdentityFields = "MISSING_IDENTITY_FIELDS"
	CodeScoreInsufficient     = "SCORE_INSUFFICIENT"
	CodeCollaboratorFailure   = "COLLABORATOR_FAILURE"
)

// FieldError names a single invalid or missing input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Error is the typed failure returned by intake operations.
type Error struct {
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewValidationError reports invalid request input.
func NewValidationError(message string, fields ...FieldError) *Error {
	return &Error{Code: CodeValidation, Message: message, Fields: fields}
}

// NewCaseNotFoundError reports an unknown or empty case.
func NewCaseNotFoundError(caseID string) *Error {
	return &Error{Code: CodeCaseNotFound, Message: fmt.Sprintf("case %s not found", caseID)}
}

// NewCaseBusyError reports a concurrent turn already in flight for the case.
func NewCaseBusyError(caseID string) *Error {
	return &Error{Code: CodeCaseBusy, Message: fmt.Sprintf("another message for case %s is being processed", caseID)}
}

// NewContractExistsError reports a duplicate generation attempt.
func NewContractExistsError(caseID string) *Error {
	return &Error{Code: CodeContractAlreadyExists, Message: fmt.Sprintf("contract already generated for case %s", caseID)}
}

// NewMissingIdentityError reports missing party addresses in the final
// conversation state.
func NewMissingIdentityError(fields []string) *Error {
	fieldErrs := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		fieldErrs = append(fieldErrs, FieldError{Field: f, Reason: "required for contract generation"})
	}
	return &Error{Code: CodeMissingIdentityFields, Message: "conversation is missing party addresses", Fields: fieldErrs}
}

// NewScoreInsufficientError reports a completeness score below threshold.
func NewScoreInsufficientError(score, threshold float64) *Error {
	return &Error{
		Code:    CodeScoreInsufficient,
		Message: fmt.Sprintf("completeness score %.2f is below threshold %.2f", score, threshold),
	}
}

// NewCollaboratorError wraps a failure from a downstream dependency.
func NewCollaboratorError(message string, err error) *Error {
	return &Error{Code: CodeCollaboratorFailure, Message: message, Err: err}
}
