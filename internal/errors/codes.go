package errors

// Error codes, grouped by pass. Codes are stable identifiers; messages are
// free to change.
const (
	CodeSyntax          = "E0001"
	CodeUnexpectedToken = "E0002"

	CodeUndefinedSort     = "E0101"
	CodeUndefinedFunction = "E0102"
	CodeArityMismatch     = "E0103"
	CodeSortMismatch      = "E0104"
	CodeContainerNesting  = "E0105"
	CodeDuplicateFunction = "E0106"
	CodeDuplicateSort     = "E0107"
	CodeUnboundVariable   = "E0109"
	CodeNoOverload        = "E0110"

	CodeIncludeRead = "E0201"

	CodeUnderConstrained = "E0301"
)
