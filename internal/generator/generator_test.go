package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_LengthAndPool(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		pool string
	}{
		{name: "letters only", opts: Options{Length: 16}, pool: Letters},
		{name: "with digits", opts: Options{Length: 16, IncludeDigits: true}, pool: Letters + Digits},
		{name: "with special", opts: Options{Length: 16, IncludeSpecial: true}, pool: Letters + Punctuation},
		{name: "everything", opts: Options{Length: 12, IncludeDigits: true, IncludeSpecial: true}, pool: Letters + Digits + Punctuation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.pool, Pool(tt.opts))
			for i := 0; i < 50; i++ {
				p, err := Generate(tt.opts)
				require.NoError(t, err)
				assert.Len(t, p, tt.opts.Length)
				for _, r := range p {
					assert.True(t, strings.ContainsRune(tt.pool, r), "unexpected %q in %q", r, p)
				}
			}
		})
	}
}

func TestGenerate_InvalidLength(t *testing.T) {
	for _, n := range []int{0, -1, MaxLength + 1} {
		_, err := Generate(Options{Length: n})
		assert.ErrorIs(t, err, ErrInvalidLength)
	}
}

func TestGenerate_Varies(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 20; i++ {
		p, err := Generate(DefaultOptions())
		require.NoError(t, err)
		seen[p] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}

func TestGenerate_EventuallyUsesEveryClass(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		p, err := Generate(Options{Length: MaxLength, IncludeDigits: true, IncludeSpecial: true})
		require.NoError(t, err)
		sb.WriteString(p)
	}
	all := sb.String()
	assert.True(t, strings.ContainsAny(all, Letters))
	assert.True(t, strings.ContainsAny(all, Digits))
	assert.True(t, strings.ContainsAny(all, Punctuation))
}
