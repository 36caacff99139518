package chat

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr error
	}{
		{
			name:    "plain content",
			content: "hello",
			want:    "hello",
		},
		{
			name:    "surrounding whitespace trimmed",
			content: "  hello world \n",
			want:    "hello world",
		},
		{
			name:    "empty string",
			content: "",
			want:    "",
		},
		{
			name:    "whitespace only",
			content: "   \t\n  ",
			want:    "",
		},
		{
			name:    "exactly max length",
			content: strings.Repeat("a", MaxMessageLength),
			want:    strings.Repeat("a", MaxMessageLength),
		},
		{
			name:    "over max length",
			content: strings.Repeat("a", MaxMessageLength+1),
			wantErr: ErrMessageTooLong,
		},
		{
			name:    "invalid utf8",
			content: "hello\xff\xfe",
			wantErr: ErrMalformedIntent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeContent(tt.content)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeContent() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("NormalizeContent() = %q, want %q", got, tt.want)
			}
		})
	}
}
