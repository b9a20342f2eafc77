package header

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/specmark/internal/biblio"
	"github.com/roach88/specmark/internal/diag"
	"github.com/roach88/specmark/internal/document"
)

func compileClause(t *testing.T, src string, kind biblio.OpKind) (*Compiled, *diag.Collector) {
	t.Helper()
	doc, err := document.Parse([]byte(src))
	require.NoError(t, err)
	h1 := findTag(doc.Root, "h1")
	require.NotNil(t, h1)
	sink := diag.NewCollector()
	return Compile(doc, h1, kind, "sec-test", sink), sink
}

func findTag(n *document.Node, tag string) *document.Node {
	if n.Tag == tag {
		return n
	}
	for _, c := range n.Children() {
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func TestCompileStructuredHeader(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Example.Op ( _x_: a Number, _y_: a Number [ , _z_: a String ] ): a Number</h1>
<dl class="header">
  <dt>description</dt>
  <dd>Adds things.</dd>
  <dt>effects</dt>
  <dd>user-code</dd>
</dl>
</spec-clause>`

	c, sink := compileClause(t, src, biblio.OpAbstract)
	assert.Empty(t, sink.All())
	assert.True(t, c.Structured)
	assert.Equal(t, "Example.Op", c.Name)
	assert.Equal(t, "Adds things.", c.Description)
	assert.Equal(t, []string{"user-code"}, c.Effects)

	require.NotNil(t, c.Signature)
	require.Len(t, c.Signature.Required, 2)
	require.Len(t, c.Signature.Optional, 1)
	assert.Equal(t, "Number", c.Signature.Required[0].Type.Name)
	assert.Equal(t, "String", c.Signature.Optional[0].Type.Name)
	assert.Equal(t, "Number", c.Signature.Return.Name)

	require.NotEmpty(t, c.Preamble)
	assert.Equal(t,
		"The abstract operation Example.Op takes arguments _x_ (a Number) and _y_ (a Number) and optional argument _z_ (a String) and returns a Number.",
		c.Preamble[0])
	assert.Equal(t, "Adds things.", c.Preamble[1])
}

func TestCompileWithoutHeaderList(t *testing.T) {
	src := `<spec-clause id="sec-test"><h1>Ordinary   Title</h1><p>body</p></spec-clause>`
	c, sink := compileClause(t, src, biblio.OpNone)
	assert.Empty(t, sink.All())
	assert.False(t, c.Structured)
	assert.Equal(t, "Ordinary Title", c.Title)
	assert.Nil(t, c.Signature)
}

func TestCompileSkipsPlaceholdersBeforeList(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Op ( _x_ )</h1>
<span></span>
<a id="anchor"></a>
<dl class="header"><dt>description</dt><dd>d</dd></dl>
</spec-clause>`
	c, _ := compileClause(t, src, biblio.OpAbstract)
	assert.True(t, c.Structured)
}

func TestCompileFindsListInsideIns(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Op ( _x_ )</h1>
<ins><dl class="header"><dt>description</dt><dd>new</dd></dl></ins>
</spec-clause>`
	c, _ := compileClause(t, src, biblio.OpAbstract)
	assert.True(t, c.Structured)
	assert.Equal(t, "new", c.Description)
}

func TestCompileGrammarFailureDegrades(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Op ( broken )</h1>
<dl class="header"><dt>effects</dt><dd>user-code</dd></dl>
</spec-clause>`
	c, sink := compileClause(t, src, biblio.OpAbstract)

	require.Len(t, sink.All(), 1)
	d := sink.All()[0]
	assert.Equal(t, diag.RuleHeaderFormat, d.Rule)
	assert.Positive(t, d.Line)

	// Literal header kept, no signature, placeholders in the preamble,
	// dl fields still consumed.
	assert.True(t, c.Structured)
	assert.Equal(t, "Op ( broken )", c.Title)
	assert.Empty(t, c.Name)
	assert.Nil(t, c.Signature)
	assert.Equal(t, []string{"user-code"}, c.Effects)
	assert.Contains(t, c.Preamble[0], PlaceholderName)
	assert.Contains(t, c.Preamble[0], PlaceholderParams)
}

func TestCompileTypeFailurePosition(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Op ( _r_: a Record with fields Bad (a Number) ): a Number</h1>
<dl class="header"><dt>description</dt><dd>d</dd></dl>
</spec-clause>`
	c, sink := compileClause(t, src, biblio.OpAbstract)

	require.Len(t, sink.All(), 1)
	d := sink.All()[0]
	assert.Equal(t, diag.RuleTypeParse, d.Rule)

	// The failing offset maps back into the original document: line 2
	// holds the header, and the column points at "Bad".
	assert.Equal(t, 2, d.Line)
	line := strings.Split(src, "\n")[1]
	assert.Equal(t, strings.Index(line, "Bad")+1, d.Col)

	// The parameter survives untyped; the clause still gets a signature.
	require.NotNil(t, c.Signature)
	require.Len(t, c.Signature.Required, 1)
	assert.Nil(t, c.Signature.Required[0].Type)
	assert.Equal(t, "Number", c.Signature.Return.Name)
}

func TestCompileDeletedParamExcluded(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Op ( _kept_, <del>_gone_,</del> _also_ )</h1>
<dl class="header"><dt>description</dt><dd>d</dd></dl>
</spec-clause>`
	c, sink := compileClause(t, src, biblio.OpAbstract)
	assert.Empty(t, sink.All())
	require.NotNil(t, c.Signature)
	require.Len(t, c.Signature.Required, 2)
	assert.Equal(t, "kept", c.Signature.Required[0].Name)
	assert.Equal(t, "also", c.Signature.Required[1].Name)
}

func TestCompileNumericMethodNameWarning(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>add ( _x_, _y_ )</h1>
<dl class="header"><dt>description</dt><dd>d</dd></dl>
</spec-clause>`
	_, sink := compileClause(t, src, biblio.OpNumericMethod)
	require.Len(t, sink.All(), 1)
	assert.Equal(t, diag.RuleNumericMethodName, sink.All()[0].Rule)
	assert.Equal(t, diag.SeverityWarning, sink.All()[0].Severity)
}

func TestCompileCompletionUnionWarning(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Op ( _x_ ): a Completion Record or a Number</h1>
<dl class="header"><dt>description</dt><dd>d</dd></dl>
</spec-clause>`

	// The warning is tied to the header, not to registration: a clause
	// with no operation kind still gets it.
	_, sink := compileClause(t, src, biblio.OpNone)
	require.Len(t, sink.All(), 1)
	assert.Equal(t, diag.RuleCompletionUnion, sink.All()[0].Rule)
	assert.Equal(t, diag.SeverityWarning, sink.All()[0].Severity)
	assert.Equal(t, "sec-test", sink.All()[0].NodeID)
}

func TestCompileSyntaxDirectedStripsParams(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>BoundNames ( _node_ )</h1>
<dl class="header"><dt>description</dt><dd>d</dd></dl>
</spec-clause>`
	c, _ := compileClause(t, src, biblio.OpSyntaxDirected)
	assert.Equal(t, "BoundNames", c.Title)
}

func TestCompileBooleanFields(t *testing.T) {
	src := `<spec-clause id="sec-test">
<h1>Op ( _x_ )</h1>
<dl class="header">
  <dt>redefinition</dt><dd>true</dd>
  <dt>skip global checks</dt><dd>true</dd>
  <dt>skip return checks</dt><dd>true</dd>
  <dt>for</dt><dd>a Widget</dd>
</dl>
</spec-clause>`
	c, _ := compileClause(t, src, biblio.OpAbstract)
	assert.True(t, c.Redefinition)
	assert.True(t, c.SkipGlobalChecks)
	assert.True(t, c.SkipReturnChecks)
	assert.Equal(t, "a Widget", c.For)
	assert.Contains(t, c.Preamble, "It is defined for a Widget.")
}
