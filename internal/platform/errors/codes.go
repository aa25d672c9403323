// Package errors provides structured domain errors with localized user messages.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unexpected error.
	CodeUnknown Code = "UNKNOWN"

	// Input errors
	CodeMalformedRequest Code = "MALFORMED_REQUEST"
	CodeTooManyDice      Code = "TOO_MANY_DICE"

	// Character errors
	CodeAlreadyExists Code = "ALREADY_EXISTS"
	CodeNotFound      Code = "NOT_FOUND"
	CodeNoData        Code = "NO_DATA"

	// Sheet errors
	CodeSessionExpired      Code = "SESSION_EXPIRED"
	CodeCategoryNotSelected Code = "CATEGORY_NOT_SELECTED"
	CodeCategoryNotEditable Code = "CATEGORY_NOT_EDITABLE"
	CodeFormNotOpen         Code = "FORM_NOT_OPEN"

	// Storage errors
	CodePersistenceFailure Code = "PERSISTENCE_FAILURE"
)

// IsUserError reports whether the code describes a problem with the user's
// request rather than with the bot. User errors are answered and counted as
// rejections; the others are logged for operators.
func (c Code) IsUserError() bool {
	switch c {
	case CodeMalformedRequest,
		CodeTooManyDice,
		CodeAlreadyExists,
		CodeNotFound,
		CodeNoData,
		CodeSessionExpired,
		CodeCategoryNotSelected,
		CodeCategoryNotEditable,
		CodeFormNotOpen:
		return true
	default:
		return false
	}
}
