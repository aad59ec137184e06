package crawler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCommunities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		self string
		want []string
	}{
		{
			name: "self, case duplicate and short name are all dropped",
			text: "Check out /r/foo and /r/Foo and /r/ba",
			self: "foo",
			want: []string{},
		},
		{
			name: "digits and underscores",
			text: "/r/microfinance2 is great, see /r/fintech_news",
			self: "seedsub",
			want: []string{"fintech_news", "microfinance2"},
		},
		{
			name: "empty text",
			text: "",
			self: "foo",
			want: []string{},
		},
		{
			name: "self is matched case-insensitively",
			text: "we are /r/GoLang, also try /r/rust",
			self: "golang",
			want: []string{"rust"},
		},
		{
			name: "mixed case normalized and deduplicated",
			text: "/r/AskScience /r/askscience /r/ASKSCIENCE",
			self: "x",
			want: []string{"askscience"},
		},
		{
			name: "full urls and trailing punctuation",
			text: "https://www.reddit.com/r/golang/wiki and (/r/programming).",
			self: "x",
			want: []string{"golang", "programming"},
		},
		{
			name: "colon is part of a name",
			text: "/r/foo:bar",
			self: "x",
			want: []string{"foo:bar"},
		},
		{
			name: "leading underscore is not a name",
			text: "/r/_hidden /r/:colon",
			self: "x",
			want: []string{},
		},
		{
			name: "marker must include the leading slash",
			text: "r/golang and u/someone",
			self: "x",
			want: []string{},
		},
		{
			name: "long names are truncated to 21 characters",
			text: "/r/" + strings.Repeat("a", 30),
			self: "x",
			want: []string{strings.Repeat("a", 21)},
		},
		{
			name: "three characters is the minimum",
			text: "/r/abc /r/ab",
			self: "x",
			want: []string{"abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExtractCommunities(tt.text, tt.self))
		})
	}
}

func TestExtractCommunitiesProperties(t *testing.T) {
	t.Parallel()

	text := `Related: /r/Golang, /r/golang_jobs, /r/learnGo and /r/GoLang.
	Sister subs: /r/rust /r/Python /r/x /r/ab /r/` + strings.Repeat("Z", 40) + ` and /r/self_sub`

	first := ExtractCommunities(text, "Self_Sub")
	second := ExtractCommunities(text, "Self_Sub")
	assert.Equal(t, first, second, "extraction must be deterministic")

	assert.IsIncreasing(t, first)
	for _, name := range first {
		assert.Equal(t, strings.ToLower(name), name)
		assert.True(t, IsCommunityName(name), "%q does not match the name pattern", name)
		assert.NotEqual(t, "self_sub", name)
	}
}

func TestIsCommunityName(t *testing.T) {
	t.Parallel()

	assert.True(t, IsCommunityName("microfinance"))
	assert.True(t, IsCommunityName("a_b"))
	assert.True(t, IsCommunityName(strings.Repeat("a", 21)))
	assert.False(t, IsCommunityName("ab"))
	assert.False(t, IsCommunityName("_abc"))
	assert.False(t, IsCommunityName(strings.Repeat("a", 22)))
	assert.False(t, IsCommunityName("has space"))
}
