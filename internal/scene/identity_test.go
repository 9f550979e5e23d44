package scene

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/roomscan/internal/xr"
)

var canonicalPattern = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestCanonicalize_Format(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "aabbccddaabbccddaabbccddaabbccdd", Canonicalize(repeatID(0xaa, 0xbb, 0xcc, 0xdd)))
	assert.Equal(t, "00000000000000000000000000000000", Canonicalize(uuid.Nil))
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10",
		Canonicalize(xr.UUID{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}))
}

func TestCanonicalize_RoundTripAndInjective(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	seen := make(map[string]xr.UUID)
	for i := 0; i < 2000; i++ {
		var id xr.UUID
		rng.Read(id[:])

		s := Canonicalize(id)
		require.Len(t, s, CanonicalLen)
		require.Regexp(t, canonicalPattern, s)

		back, err := ParseCanonical(s)
		require.NoError(t, err)
		require.Equal(t, id, back)

		if prev, ok := seen[s]; ok {
			require.Equal(t, prev, id, "two distinct ids share canonical form %s", s)
		}
		seen[s] = id
	}
}

func TestCanonicalize_SingleByteDifferences(t *testing.T) {
	t.Parallel()

	base := Canonicalize(uuid.Nil)
	for pos := 0; pos < xr.UUIDSize; pos++ {
		var id xr.UUID
		id[pos] = 1
		assert.NotEqual(t, base, Canonicalize(id), "byte %d", pos)
	}
}

func TestParseCanonical_Rejects(t *testing.T) {
	t.Parallel()

	for _, s := range []string{
		"",
		"aabb",
		"AABBCCDDAABBCCDDAABBCCDDAABBCCDD",
		"aabbccdd-aabb-ccdd-aabb-ccddaabbccdd",
		"zzbbccddaabbccddaabbccddaabbccdd",
	} {
		_, err := ParseCanonical(s)
		assert.Error(t, err, "ParseCanonical(%q)", s)
	}
}

func TestCanonicalOrAbsent(t *testing.T) {
	t.Parallel()

	assert.Empty(t, canonicalOrAbsent(uuid.Nil))
	assert.Equal(t, Canonicalize(repeatID(0x01)), canonicalOrAbsent(repeatID(0x01)))
}
