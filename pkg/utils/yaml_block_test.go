package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractYAMLBlock(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced yaml block",
			in:   "Here is my answer:\n```yaml\nthinking: ok\naction: finish\n```\nDone.",
			want: "thinking: ok\naction: finish",
		},
		{
			name: "bare yaml starting at thinking key",
			in:   "Sure, here you go.\nthinking: looking at the file\naction: tool",
			want: "thinking: looking at the file\naction: tool",
		},
		{
			name: "bare yaml starting at action key",
			in:   "preamble text\naction: finish",
			want: "action: finish",
		},
		{
			name: "no yaml markers returns input",
			in:   "just a plain sentence",
			want: "just a plain sentence",
		},
		{
			name: "unterminated fence falls through",
			in:   "```yaml\naction: rag",
			want: "action: rag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractYAMLBlock(tt.in))
		})
	}
}
