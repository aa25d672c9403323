package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeUnknown             = "UNKNOWN"
	CodeMalformedRequest    = "MALFORMED_REQUEST"
	CodeTooManyDice         = "TOO_MANY_DICE"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeNotFound            = "NOT_FOUND"
	CodeNoData              = "NO_DATA"
	CodeSessionExpired      = "SESSION_EXPIRED"
	CodeCategoryNotSelected = "CATEGORY_NOT_SELECTED"
	CodeCategoryNotEditable = "CATEGORY_NOT_EDITABLE"
	CodeFormNotOpen         = "FORM_NOT_OPEN"
	CodePersistenceFailure  = "PERSISTENCE_FAILURE"
)

var enUSMessages = map[Code]string{
	CodeUnknown: "Something went wrong. Please try again.",

	// Input errors
	CodeMalformedRequest: "Please use a valid format: '{{.Usage}}'",
	CodeTooManyDice:      "Exceeded {{.Max}} dice maximum for this roll. Adjust your request",

	// Character errors
	CodeAlreadyExists: "Character {{.Nickname}} already exists.",
	CodeNotFound:      "No character found for {{.Nickname}}",
	CodeNoData:        "No data available for this category.",

	// Sheet errors
	CodeSessionExpired:      "This character sheet has expired. Open it again with /show_talent.",
	CodeCategoryNotSelected: "Please select a category before editing.",
	CodeCategoryNotEditable: "{{.Category}} cannot be edited.",
	CodeFormNotOpen:         "There is no open form for this sheet.",

	// Storage errors
	CodePersistenceFailure: "Failed to {{.Action}}.",
}
