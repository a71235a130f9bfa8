package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"tags removed", "<b>bold</b> and <i>italic</i>", "bold and italic"},
		{"script block removed with contents", `before<script>alert("x")</script>after`, "beforeafter"},
		{"script block with attributes", `<script type="text/javascript">steal()</script>safe`, "safe"},
		{"script case insensitive", "<SCRIPT>evil()</SCRIPT>ok", "ok"},
		{"multiline script", "a<script>\nline1\nline2\n</script>b", "ab"},
		{"self closing", "line<br/>break", "linebreak"},
		{"unclosed tag", "text <b>tail", "text tail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripHTML(tt.input))
		})
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"trims surrounding space", "  hello  ", "hello"},
		{"collapses runs of spaces", "a    b\t\tc", "a b c"},
		{"markup only becomes empty", "<p><br/></p>", ""},
		{"markup stripped then trimmed", "  <b> spaced </b>  ", "spaced"},
		{"newlines survive", "line one\nline two", "line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clean(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "exact", Truncate("exact", 5))
	assert.Equal(t, "trunc", Truncate("truncated", 5))
	assert.Equal(t, "", Truncate("", 5))
}

func TestEscapeLikeWildcards(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"100%", `100\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{"%_", `\%\_`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, EscapeLikeWildcards(tt.input))
	}
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, "%alice%", SearchPattern("  alice  "))
	assert.Equal(t, `%100\%%`, SearchPattern("100%"))

	// Long terms are capped before wrapping.
	long := strings.Repeat("a", 150)
	got := SearchPattern(long)
	assert.Equal(t, 102, len(got))
	assert.True(t, strings.HasPrefix(got, "%"))
	assert.True(t, strings.HasSuffix(got, "%"))
}
