package patch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSnippet(t *testing.T) {
	tests := []struct {
		name      string
		spec      string
		wantStart int
		wantEnd   int
		wantErr   bool
	}{
		{
			name: "well formed",
			spec: `<<<<<<< ORIGINAL // Line 4
old text
=======
new text
>>>>>>> UPDATED // Line 6`,
			wantStart: 4,
			wantEnd:   6,
		},
		{
			name: "multi-line sections",
			spec: `<<<<<<< ORIGINAL // Line 2
first
second
=======
replacement one
replacement two
>>>>>>> UPDATED // Line 4`,
			wantStart: 2,
			wantEnd:   4,
		},
		{
			name:    "missing original marker",
			spec:    "=======\nnew\n>>>>>>> UPDATED // Line 3",
			wantErr: true,
		},
		{
			name: "missing separator",
			spec: `<<<<<<< ORIGINAL // Line 1
old
>>>>>>> UPDATED // Line 2`,
			wantErr: true,
		},
		{
			name: "missing updated marker",
			spec: `<<<<<<< ORIGINAL // Line 1
old
=======
new`,
			wantErr: true,
		},
		{
			name: "non-numeric line reference",
			spec: `<<<<<<< ORIGINAL // Line abc
old
=======
new
>>>>>>> UPDATED // Line 2`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snip, err := parseSnippet(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, snip.StartLine)
			assert.Equal(t, tt.wantEnd, snip.EndLine)
		})
	}
}

func TestParseSnippetTrimsSections(t *testing.T) {
	snip, err := parseSnippet(`<<<<<<< ORIGINAL // Line 1
  old content
=======
  new content
>>>>>>> UPDATED // Line 2`)
	require.NoError(t, err)
	assert.Equal(t, "old content", snip.Original)
	assert.Equal(t, "new content", snip.Updated)
}
