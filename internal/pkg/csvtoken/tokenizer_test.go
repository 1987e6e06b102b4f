package csvtoken

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected [][]string
	}{
		{
			name:     "simple rows",
			input:    "a,b,c\n1,2,3\n",
			expected: [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:     "no trailing newline",
			input:    "a,b\n1,2",
			expected: [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:     "crlf line endings",
			input:    "a,b\r\n1,2\r\n",
			expected: [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:     "quoted comma",
			input:    `x,"hello, world",y`,
			expected: [][]string{{"x", "hello, world", "y"}},
		},
		{
			name:     "doubled quote",
			input:    `"say ""hi""",2`,
			expected: [][]string{{`say "hi"`, "2"}},
		},
		{
			name:     "backslash escaped quote",
			input:    `"say \"hi\"",2`,
			expected: [][]string{{`say "hi"`, "2"}},
		},
		{
			name:     "embedded newline",
			input:    "k,\"line1\nline2\",v\nnext,row,here",
			expected: [][]string{{"k", "line1\nline2", "v"}, {"next", "row", "here"}},
		},
		{
			name:     "embedded crlf kept verbatim",
			input:    "k,\"a\r\nb\"\r\n",
			expected: [][]string{{"k", "a\r\nb"}},
		},
		{
			name:     "blank lines skipped",
			input:    "\n\na,b\n\n   \n1,2\n",
			expected: [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:     "empty fields kept",
			input:    "Override,10,1,,,,",
			expected: [][]string{{"Override", "10", "1", "", "", "", ""}},
		},
		{
			name:     "byte order mark dropped",
			input:    bom + "Type,Key\n",
			expected: [][]string{{"Type", "Key"}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "korean text",
			input:    "Common,Box,박스",
			expected: [][]string{{"Common", "Box", "박스"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Parse(tt.input))
		})
	}
}

// quoteField encodes a value the way spreadsheet exports do.
func quoteField(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

func TestParse_RoundTrip(t *testing.T) {
	values := []string{
		"plain",
		"comma, inside",
		`quote " inside`,
		"newline\ninside",
		"all, of \"them\"\r\nat once",
		"",
	}

	for _, v := range values {
		line := "before," + quoteField(v) + ",after\n"
		rows := Parse(line)
		require.Len(t, rows, 1, "value %q", v)
		assert.Equal(t, []string{"before", v, "after"}, rows[0])
	}
}

const streamSample = "Type,Category,Key,Korean\r\n" +
	"Common,,Box,박스\n" +
	"Override,10,1,\"multi\nline, with \"\"quotes\"\"\"\n" +
	"Override,10,2,\"back\\\"slash\"\r\n" +
	"\n" +
	"Override,11,3,last"

func TestStream_EquivalentToParseForEverySplit(t *testing.T) {
	want := Parse(streamSample)
	require.Len(t, want, 5)

	for split := 0; split <= len(streamSample); split++ {
		s := NewStream()
		var got [][]string
		got = append(got, s.Write(streamSample[:split])...)
		got = append(got, s.Write(streamSample[split:])...)
		got = append(got, s.Flush()...)

		assert.Equal(t, want[0], s.Header(), "split at %d", split)
		assert.Equal(t, want[1:], got, "split at %d", split)
	}
}

func TestStream_ByteByByte(t *testing.T) {
	input := bom + streamSample
	s := NewStream()
	var got [][]string
	for i := 0; i < len(input); i++ {
		got = append(got, s.Write(input[i:i+1])...)
	}
	got = append(got, s.Flush()...)

	want := Parse(streamSample)
	assert.Equal(t, want[0], s.Header())
	assert.Equal(t, want[1:], got)
}

func TestStream_HeaderOnly(t *testing.T) {
	s := NewStream()
	assert.Nil(t, s.Write("\n\nA,B,C"))
	assert.Nil(t, s.Header())
	assert.Nil(t, s.Flush())
	assert.Equal(t, []string{"A", "B", "C"}, s.Header())
}

func TestReadAll(t *testing.T) {
	header, rows, err := ReadAll(iotest.OneByteReader(strings.NewReader(streamSample)), 7)
	require.NoError(t, err)

	want := Parse(streamSample)
	assert.Equal(t, want[0], header)
	assert.Equal(t, want[1:], rows)
}

func TestReadAll_Error(t *testing.T) {
	boom := errors.New("boom")
	_, _, err := ReadAll(iotest.ErrReader(boom), 0)
	assert.ErrorIs(t, err, boom)
}
