package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownExtractor_Extract(t *testing.T) {
	m := NewMarkdownExtractor()

	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:        "heading and emphasis",
			input:       "# Lease Agreement\n\nThe tenant **shall** pay on time.\n",
			contains:    []string{"Lease Agreement\n", "The tenant shall pay on time."},
			notContains: []string{"#", "**"},
		},
		{
			name:     "list items on their own lines",
			input:    "Duties:\n\n- Rent\n- Deposit\n",
			contains: []string{"- Rent\n- Deposit"},
		},
		{
			name:        "table rows",
			input:       "| Party | Role |\n|---|---|\n| Alice | Landlord |\n",
			contains:    []string{"Party | Role\n", "Alice | Landlord"},
			notContains: []string{"---"},
		},
		{
			name:     "fenced code kept verbatim",
			input:    "```\nclause = 7\n```\n",
			contains: []string{"clause = 7"},
		},
		{
			name:        "links keep their text",
			input:       "See [section 4](https://example.com/s4).\n",
			contains:    []string{"See section 4."},
			notContains: []string{"https://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.Extract(context.Background(), "doc.md", []byte(tt.input))
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestMarkdownExtractor_Empty(t *testing.T) {
	got, err := NewMarkdownExtractor().Extract(context.Background(), "empty.md", nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
