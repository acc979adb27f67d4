package codes

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateLengthAndCharset(t *testing.T) {
	t.Parallel()

	for range 200 {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, DefaultLength)

		for _, c := range code {
			require.True(t, strings.ContainsRune(Alphabet, c),
				"unexpected character %q in code %q", c, code)
		}
	}
}

func TestGenerateNRejectsBadLength(t *testing.T) {
	t.Parallel()

	_, err := GenerateN(0)
	require.Error(t, err)

	_, err = GenerateN(-3)
	require.Error(t, err)
}

func TestGenerateNCustomLength(t *testing.T) {
	t.Parallel()

	code, err := GenerateN(16)
	require.NoError(t, err)
	require.Len(t, code, 16)
}

func TestGenerateProducesDistinctCodes(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{}, 1000)
	for range 1000 {
		code, err := Generate()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}

	// 1000 draws from a 62^8 space colliding would indicate a broken sampler.
	require.Len(t, seen, 1000)
}

func TestGenerateCoversAlphabet(t *testing.T) {
	t.Parallel()

	counts := make(map[byte]int)
	for range 500 {
		code := MustGenerate()
		for i := 0; i < len(code); i++ {
			counts[code[i]]++
		}
	}

	// 4000 samples over 62 symbols: every symbol should appear at least once
	// with overwhelming probability. A missing symbol means a truncated
	// alphabet or an off-by-one in the sampler.
	for i := 0; i < len(Alphabet); i++ {
		require.Greater(t, counts[Alphabet[i]], 0,
			"symbol %q never generated", string(Alphabet[i]))
	}
}
