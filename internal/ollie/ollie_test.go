// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ollie

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/openie-runner/pkg/types"
)

const obamaOutput = "1.000: (Barack Obama; was; born)\n1.000: (Barack Obama; was born in; Hawaii)\n"

func TestParse_ObamaScenario(t *testing.T) {
	records, err := Parse(obamaOutput, Options{TrimFields: true})
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Barack Obama", "was", "born"},
		{"Barack Obama", "was born in", "Hawaii"},
	}, types.Tuples(records))
}

func TestParse_PreservesWhitespace(t *testing.T) {
	records, err := Parse(obamaOutput, Options{})
	require.NoError(t, err)

	require.Len(t, records, 2)
	assert.Equal(t, types.Record{Subject: "Barack Obama", Relation: " was", Object: " born"}, records[0])
	assert.Equal(t, types.Record{Subject: "Barack Obama", Relation: " was born in", Object: " Hawaii"}, records[1])
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		text string
		want [][]string
	}{
		{
			name: "empty output",
			text: "",
			want: [][]string{},
		},
		{
			name: "only newlines",
			text: "\n\n\n",
			want: [][]string{},
		},
		{
			name: "no trailing newline",
			text: "0.9: (a;b;c)",
			want: [][]string{{"a", "b", "c"}},
		},
		{
			name: "blank lines between records are skipped",
			text: "0.9: (a;b;c)\n\n0.1: (d;e;f)\n",
			want: [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name: "crlf line endings",
			text: "0.9: (a;b;c)\r\n0.1: (d;e;f)\r\n",
			want: [][]string{{"a", "b", "c"}, {"d", "e", "f"}},
		},
		{
			name: "text after the closing paren is ignored",
			text: "0.9: (a;b;c) [extra] (x;y;z)",
			want: [][]string{{"a", "b", "c"}},
		},
		{
			name: "score is never collected",
			text: "0.123: (s;r;o)",
			want: [][]string{{"s", "r", "o"}},
		},
		{
			name: "empty fields are kept",
			text: "1.0: (;;)",
			want: [][]string{{"", "", ""}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(tt.text, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, types.Tuples(records))
		})
	}
}

func TestParse_RecordCountMatchesNonEmptyLines(t *testing.T) {
	for _, k := range []int{0, 1, 2, 17, 100} {
		var b strings.Builder
		for i := 0; i < k; i++ {
			fmt.Fprintf(&b, "0.%03d: (s%d; r%d; o%d)\n", i%1000, i, i, i)
		}
		records, err := Parse(b.String(), Options{TrimFields: true})
		require.NoError(t, err)
		require.Len(t, records, k)
		for i, r := range records {
			assert.Equal(t, []string{fmt.Sprintf("s%d", i), fmt.Sprintf("r%d", i), fmt.Sprintf("o%d", i)}, r.Fields())
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
		reason   string
	}{
		{
			name:     "line without open paren",
			text:     "1.000: (a; b; c)\nno parentheses here\n",
			wantLine: 2,
			reason:   `missing "("`,
		},
		{
			name:     "line without close paren",
			text:     "1.000: (a; b; c\n",
			wantLine: 1,
			reason:   `missing ")"`,
		},
		{
			name:     "close paren only before open paren",
			text:     "1.000: ) (a; b; c\n",
			wantLine: 1,
			reason:   `missing ")"`,
		},
		{
			name:     "too few fields",
			text:     "\n\n1.000: (a; b)\n",
			wantLine: 3,
			reason:   "want 3 fields, got 2",
		},
		{
			name:     "too many fields",
			text:     "1.000: (a; b; c; d)",
			wantLine: 1,
			reason:   "want 3 fields, got 4",
		},
		{
			name:     "whitespace-only line",
			text:     "1.000: (a; b; c)\n   \n",
			wantLine: 2,
			reason:   `missing "("`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(tt.text, Options{})
			require.Error(t, err)
			assert.Nil(t, records)
			assert.ErrorIs(t, err, ErrMalformedLine)

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.wantLine, pe.Line)
			assert.Equal(t, tt.reason, pe.Reason)
		})
	}
}

func TestParseLine(t *testing.T) {
	rec, err := ParseLine("1.000: (Barack Obama; was born in; Hawaii)", Options{TrimFields: true})
	require.NoError(t, err)
	assert.Equal(t, types.Record{Subject: "Barack Obama", Relation: "was born in", Object: "Hawaii"}, rec)

	_, err = ParseLine("garbage", Options{})
	assert.ErrorIs(t, err, ErrMalformedLine)
	assert.EqualError(t, err, `line 1: missing "(": "garbage"`)
}
