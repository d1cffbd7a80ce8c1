// File: parser_test.go
// Title: SmartScript Parser Unit Tests
// Description: Unit tests for the SmartScript parser covering tree shape,
//              tag arity, END matching and the source round trip.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-04
// Modified: 2026-03-06
//
// Change History:
// - 2026-03-04 v0.1.0: Initial test suite

package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msto63/smartweb/internal/smartscript/ast"
)

func TestParse_Structure(t *testing.T) {
	doc, err := Parse("Hi {$ FOR i 1 3 $}[{$= i \"x\" @dup $}]{$END$} bye")
	require.NoError(t, err)
	require.Equal(t, 3, doc.ChildCount())

	text, ok := doc.Child(0).(*ast.TextNode)
	require.True(t, ok)
	assert.Equal(t, "Hi ", text.Text)

	loop, ok := doc.Child(1).(*ast.ForLoopNode)
	require.True(t, ok)
	assert.Equal(t, "i", loop.Variable.Name)
	assert.Equal(t, &ast.ElementConstantInteger{Value: 1}, loop.Start)
	assert.Equal(t, &ast.ElementConstantInteger{Value: 3}, loop.End)
	assert.Nil(t, loop.Step)
	require.Equal(t, 3, loop.ChildCount())

	echo, ok := loop.Child(1).(*ast.EchoNode)
	require.True(t, ok)
	assert.Equal(t, []ast.Element{
		&ast.ElementVariable{Name: "i"},
		&ast.ElementString{Value: "x"},
		&ast.ElementFunction{Name: "dup"},
	}, echo.Elements())

	tail, ok := doc.Child(2).(*ast.TextNode)
	require.True(t, ok)
	assert.Equal(t, " bye", tail.Text)
}

func TestParse_ForWithStep(t *testing.T) {
	doc, err := Parse(`{$ for k "1" 2.5 j $}{$ end $}`)
	require.NoError(t, err)

	loop := doc.Child(0).(*ast.ForLoopNode)
	assert.Equal(t, &ast.ElementString{Value: "1"}, loop.Start)
	assert.Equal(t, &ast.ElementConstantDouble{Value: 2.5}, loop.End)
	assert.Equal(t, &ast.ElementVariable{Name: "j"}, loop.Step)
}

func TestParse_NestedLoops(t *testing.T) {
	doc, err := Parse("{$FOR i 1 2$}{$FOR i 1 2$}{$=i$}{$END$}{$END$}")
	require.NoError(t, err)

	outer := doc.Child(0).(*ast.ForLoopNode)
	require.Equal(t, 1, outer.ChildCount())
	inner := outer.Child(0).(*ast.ForLoopNode)
	require.Equal(t, 1, inner.ChildCount())
	_, ok := inner.Child(0).(*ast.EchoNode)
	assert.True(t, ok)
}

func TestParse_EmptyEcho(t *testing.T) {
	doc, err := Parse("{$=$}")
	require.NoError(t, err)
	echo := doc.Child(0).(*ast.EchoNode)
	assert.Empty(t, echo.Elements())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"FOR with too few arguments", "{$ FOR i 1 $}{$END$}"},
		{"FOR with too many arguments", "{$ FOR i 1 2 3 4 $}{$END$}"},
		{"FOR without variable", "{$ FOR 1 2 3 $}{$END$}"},
		{"FOR with function argument", "{$ FOR i 1 @sin $}{$END$}"},
		{"FOR with operator argument", "{$ FOR i 1 10 + $}{$END$}"},
		{"Unknown tag", "{$ WHILE i $}"},
		{"END without FOR", "text {$END$}"},
		{"Too many END", "{$ FOR i 1 2 $}{$END$}{$END$}"},
		{"Unclosed FOR", "{$ FOR i 1 2 $} body"},
		{"END with arguments", "{$ FOR i 1 2 $}{$END i $}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr), "expected *ParseError, got %T: %v", err, err)
		})
	}
}

func TestParse_LexErrorsPropagate(t *testing.T) {
	_, err := Parse(`{$= "unterminated`)
	require.Error(t, err)
	var lexErr *LexError
	assert.True(t, errors.As(err, &lexErr), "expected *LexError, got %T", err)
}

func TestParse_RoundTrip(t *testing.T) {
	inputs := map[string]string{
		"escapes":     `a\\b \{$ not a tag {$= "q\"\\" $}`,
		"whitespace":  "  \n\t{$   =   1   $}\n",
		"doubles":     "{$= 1.0 -2.50 3 $}",
		"nested":      "{$FOR a 1 2$}{$FOR b a 3 a$}{$= a b + $}{$END$}x{$END$}",
		"empty":       "",
		"only tag":    "{$END$}",
		"braces only": "{ } { $ }",
	}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			doc, err := Parse(input)
			if name == "only tag" {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			again, err := Parse(doc.String())
			require.NoError(t, err, "serialized form: %q", doc.String())
			assert.True(t, ast.Equal(doc, again), "round trip mismatch:\n%s\n%s", doc.String(), again.String())
			assert.Equal(t, doc.String(), again.String())
		})
	}
}

func TestParse_FixturesRoundTrip(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.script"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := os.ReadFile(file)
			require.NoError(t, err)

			doc, err := Parse(string(src))
			require.NoError(t, err)

			again, err := Parse(doc.String())
			require.NoError(t, err)
			assert.True(t, ast.Equal(doc, again))
		})
	}
}

func TestParse_Doc1Shape(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "doc1.script"))
	require.NoError(t, err)

	doc, err := Parse(string(src))
	require.NoError(t, err)

	var loops []*ast.ForLoopNode
	for _, child := range doc.Children() {
		if loop, ok := child.(*ast.ForLoopNode); ok {
			loops = append(loops, loop)
		}
	}
	require.Len(t, loops, 2)
	assert.Equal(t, &ast.ElementConstantInteger{Value: 1}, loops[0].Step)
	assert.Equal(t, &ast.ElementConstantInteger{Value: 2}, loops[1].Step)
}

func TestParseError_Message(t *testing.T) {
	_, err := Parse("abc\n{$ WHILE $}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "WHILE")
}
