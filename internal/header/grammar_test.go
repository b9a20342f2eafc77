package header

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderRequiredAndOptional(t *testing.T) {
	h, err := ParseHeader("Example.Op ( _x_, _y_ [ , _z_ ] ) : a Number")
	require.NoError(t, err)

	assert.Equal(t, "Example.Op", h.Name)
	require.Len(t, h.Params, 2)
	assert.Equal(t, "x", h.Params[0].Name)
	assert.Equal(t, "y", h.Params[1].Name)
	require.Len(t, h.Optional, 1)
	assert.Equal(t, "z", h.Optional[0].Name)
	assert.Equal(t, "a Number", h.ReturnText)
}

func TestParseHeaderTypedParams(t *testing.T) {
	src := "OrdinaryGet ( _O_: an Object, _P_: a property key ): an ECMAScript language value"
	h, err := ParseHeader(src)
	require.NoError(t, err)

	require.Len(t, h.Params, 2)
	assert.Equal(t, "an Object", h.Params[0].TypeText)
	assert.Equal(t, "a property key", h.Params[1].TypeText)
	assert.Equal(t, "an ECMAScript language value", h.ReturnText)

	// Offsets index into the original source.
	assert.Equal(t, "an Object", src[h.Params[0].TypeOffset:h.Params[0].TypeOffset+len("an Object")])
	assert.Equal(t, "an ECMAScript language value", src[h.ReturnOffset:])
}

func TestParseHeaderNoParams(t *testing.T) {
	h, err := ParseHeader("HostEnsureCanCompileStrings ( )")
	require.NoError(t, err)
	assert.Equal(t, "HostEnsureCanCompileStrings", h.Name)
	assert.Empty(t, h.Params)
	assert.Empty(t, h.Optional)
	assert.Empty(t, h.ReturnText)
}

func TestParseHeaderBareName(t *testing.T) {
	h, err := ParseHeader("Evaluation")
	require.NoError(t, err)
	assert.Equal(t, "Evaluation", h.Name)
}

func TestParseHeaderMultiline(t *testing.T) {
	h, err := ParseHeader("Number::add (\n  _x_: a Number,\n  _y_: a Number,\n): a Number")
	require.NoError(t, err)
	assert.Equal(t, "Number::add", h.Name)
	require.Len(t, h.Params, 2)
	assert.Equal(t, "a Number", h.Params[0].TypeText)
}

func TestParseHeaderNestedOptionalGroups(t *testing.T) {
	h, err := ParseHeader("MakeDay ( _year_ [ , _month_ [ , _date_ ] ] )")
	require.NoError(t, err)
	require.Len(t, h.Params, 1)
	require.Len(t, h.Optional, 2)
	assert.Equal(t, "month", h.Optional[0].Name)
	assert.Equal(t, "date", h.Optional[1].Name)
}

func TestParseHeaderDeletedParam(t *testing.T) {
	h, err := ParseHeader("LegacyOp ( _kept_, <del>_gone_: a Number,</del> _also_ )")
	require.NoError(t, err)
	require.Len(t, h.Params, 3)
	assert.False(t, h.Params[0].Deleted)
	assert.True(t, h.Params[1].Deleted)
	assert.False(t, h.Params[2].Deleted)
}

func TestParseHeaderRecordTypeAnnotation(t *testing.T) {
	h, err := ParseHeader("MakeMatch ( _r_: a Record with fields [[Start]] (a Number) and [[End]] (a Number), _s_ )")
	require.NoError(t, err)
	require.Len(t, h.Params, 2)
	assert.Equal(t, "a Record with fields [[Start]] (a Number) and [[End]] (a Number)", h.Params[0].TypeText)
	assert.Equal(t, "s", h.Params[1].Name)
}

func TestParseHeaderTypedParamBeforeOptionalGroup(t *testing.T) {
	h, err := ParseHeader("MakeWidget ( _size_: a Number [ , _label_: a String ] ): a Widget")
	require.NoError(t, err)
	require.Len(t, h.Params, 1)
	assert.Equal(t, "a Number", h.Params[0].TypeText)
	require.Len(t, h.Optional, 1)
	assert.Equal(t, "a String", h.Optional[0].TypeText)
	assert.Equal(t, "a Widget", h.ReturnText)
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"unterminated params", "Op ( _x_"},
		{"bad parameter", "Op ( x )"},
		{"unterminated name", "Op ( _x )"},
		{"stray bracket", "Op ( _x_ ] )"},
		{"unclosed optional", "Op ( [ _x_ )"},
		{"missing return", "Op ( _x_ ) :"},
		{"junk after params", "Op ( _x_ ) something"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.src)
			require.Error(t, err)
			var perr *ParseError
			assert.ErrorAs(t, err, &perr)
		})
	}
}
