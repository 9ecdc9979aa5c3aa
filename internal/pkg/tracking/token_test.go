package tracking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateTokenLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		length int
	}{
		{name: "default length", length: TokenLength},
		{name: "short token", length: 8},
		{name: "long token", length: 64},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			token, err := GenerateToken(tc.length)
			assert.NoError(t, err)
			assert.Len(t, token, tc.length)
		})
	}
}

func TestGenerateTokenRejectsInvalidLength(t *testing.T) {
	t.Parallel()

	for _, length := range []int{0, -1} {
		_, err := GenerateToken(length)
		assert.Error(t, err)
	}
}

func TestGenerateTokenAlphabet(t *testing.T) {
	t.Parallel()

	token, err := GenerateToken(256)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, r := range token {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("token contains character %q outside the Base62 alphabet", r)
		}
	}
}

func TestGenerateTokenUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		token, err := GenerateToken(TokenLength)
		if err != nil {
			t.Fatalf("GenerateToken: %v", err)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = struct{}{}
	}
}
