package htmltext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text unchanged",
			input:    "Arditodesìo",
			expected: "Arditodesìo",
		},
		{
			name:     "tags removed",
			input:    "<p>Uno spettacolo di <em>teatro</em> e scienza.</p>",
			expected: "Uno spettacolo di teatro e scienza.",
		},
		{
			name:     "entities decoded",
			input:    "Cantico &amp; Cantici &#8211; Rassegna",
			expected: "Cantico & Cantici – Rassegna",
		},
		{
			name:     "whitespace collapsed",
			input:    "<div>\n  Teatro\n\t Sociale  </div>",
			expected: "Teatro Sociale",
		},
		{
			name:     "script contents dropped",
			input:    "<p>Prima</p><script>var x = 'nascosto';</script><p>Dopo</p>",
			expected: "Prima Dopo",
		},
		{
			name:     "style contents dropped",
			input:    "<style>.x { color: red }</style>Testo",
			expected: "Testo",
		},
		{
			name:     "comments dropped",
			input:    "Prima<!-- nota interna -->Dopo",
			expected: "Prima Dopo",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Strip(tt.input))
		})
	}
}

func TestJSONLDBlocks(t *testing.T) {
	page := `<html><head>
<script type="application/ld+json">{"@type":"Event","name":"Amleto"}</script>
<script>var notLD = true;</script>
<script type="application/ld+json">
  {"@type":"Event","name":"Otello"}
</script>
</head><body></body></html>`

	blocks := JSONLDBlocks(page)

	assert.Equal(t, []string{
		`{"@type":"Event","name":"Amleto"}`,
		`{"@type":"Event","name":"Otello"}`,
	}, blocks)
}

func TestJSONLDBlocks_AttributeVariants(t *testing.T) {
	page := `<script type='application/ld+json' class="schema">{"a":1}</script>` +
		`<SCRIPT TYPE="application/ld+json">{"b":2}</SCRIPT>`

	blocks := JSONLDBlocks(page)

	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, blocks)
}

func TestJSONLDBlocks_None(t *testing.T) {
	assert.Empty(t, JSONLDBlocks(`<html><script>plain</script></html>`))
	assert.Empty(t, JSONLDBlocks(""))
}

func TestJSONLDBlocks_UnclosedScriptIgnored(t *testing.T) {
	page := `<script type="application/ld+json">{"a":1}</script>` +
		`<script type="application/ld+json">{"trailing": true`

	assert.Equal(t, []string{`{"a":1}`}, JSONLDBlocks(page))
}
