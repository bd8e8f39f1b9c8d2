package errors

import "strings"

// Constructors for the error shapes each pass reports.

func Syntax(pos Position, format string, args ...any) *CompilerError {
	return newError(ParseError, CodeSyntax, format, args...).WithPosition(pos)
}

func UnexpectedToken(pos Position, got, want string) *CompilerError {
	return newError(ParseError, CodeUnexpectedToken, "unexpected %s, expected %s", got, want).WithPosition(pos)
}

func UndefinedSort(name string) *CompilerError {
	return newError(TypeError, CodeUndefinedSort, "undefined sort '%s'", name)
}

func UndefinedFunction(name string) *CompilerError {
	return newError(TypeError, CodeUndefinedFunction, "undefined function '%s'", name)
}

func ArityMismatch(fn string, want, got int) *CompilerError {
	return newError(TypeError, CodeArityMismatch, "function '%s' expects %d arguments, got %d", fn, want, got)
}

func SortMismatch(context, want, got string) *CompilerError {
	return newError(TypeError, CodeSortMismatch, "%s: expected sort %s, found %s", context, want, got)
}

func ContainerNesting(detail string) *CompilerError {
	return newError(TypeError, CodeContainerNesting, "%s", detail)
}

func DuplicateFunction(name string) *CompilerError {
	return newError(TypeError, CodeDuplicateFunction, "function '%s' is already declared", name)
}

func DuplicateSort(name string) *CompilerError {
	return newError(TypeError, CodeDuplicateSort, "sort '%s' is already declared", name)
}

func UnboundVariable(name string) *CompilerError {
	return newError(TypeError, CodeUnboundVariable, "variable '%s' is not bound by the rule body", name)
}

func NoMatchingPrimitive(name string, argSorts []string) *CompilerError {
	return newError(TypeError, CodeNoOverload, "no overload of primitive '%s' accepts (%s)", name, strings.Join(argSorts, ", "))
}

func IncludeRead(path string, cause error) *CompilerError {
	return newError(IoError, CodeIncludeRead, "failed to read include file %s: %v", path, cause)
}

// UnderConstrained reports a rule-body equality constraint where neither side
// carries a representative term, which makes proof tracking impossible.
func UnderConstrained(lhs, rhs string) *CompilerError {
	return newError(InstrumentationError, CodeUnderConstrained,
		"constraint without representative term on either side: %s = %s", lhs, rhs)
}
