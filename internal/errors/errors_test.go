package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := UndefinedSort("Math")
	assert.Equal(t, TypeError, err.Kind)
	assert.Equal(t, CodeUndefinedSort, err.Code)
	assert.Equal(t, "type error [E0101]: undefined sort 'Math'", err.Error())
}

func TestErrorWithPosition(t *testing.T) {
	pos := Position{Filename: "prog.egg", Line: 3, Column: 7}
	err := Syntax(pos, "unexpected %q", ")")
	assert.Equal(t, ParseError, err.Kind)
	assert.Contains(t, err.Error(), "prog.egg:3:7")
	assert.False(t, err.Position.IsZero())
}

func TestWithPositionCopies(t *testing.T) {
	base := UndefinedFunction("f")
	located := base.WithPosition(Position{Line: 1, Column: 1})
	assert.True(t, base.Position.IsZero(), "the original stays unlocated")
	assert.False(t, located.Position.IsZero())
}

func TestUnderConstrainedNamesBothSides(t *testing.T) {
	err := UnderConstrained("lhs_var", "rhs_var")
	assert.Equal(t, InstrumentationError, err.Kind)
	assert.Contains(t, err.Message, "lhs_var")
	assert.Contains(t, err.Message, "rhs_var")
}
