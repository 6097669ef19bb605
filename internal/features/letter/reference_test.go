package letter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAndParseReference(t *testing.T) {
	at := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	ref := FormatReference("ELMS", at, 7)
	assert.Equal(t, "ELMS-202603-0007", ref)

	prefix, period, seq, err := ParseReference(ref)
	require.NoError(t, err)
	assert.Equal(t, "ELMS", prefix)
	assert.Equal(t, "202603", period)
	assert.Equal(t, int64(7), seq)

	prefix, _, seq, err = ParseReference("HR-OUT-202603-12345")
	require.NoError(t, err)
	assert.Equal(t, "HR-OUT", prefix)
	assert.Equal(t, int64(12345), seq)

	for _, bad := range []string{"", "ELMS", "ELMS-2026-0001", "ELMS-202603-abc", "-202603-0001"} {
		_, _, _, err := ParseReference(bad)
		assert.Error(t, err, bad)
	}
}

func TestMemoryReferenceGeneratorMonotonic(t *testing.T) {
	gen := NewMemoryReferenceGenerator("ELMS", NewMemoryStore())
	ctx := context.Background()
	jan := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	a, err := gen.Next(ctx, jan)
	require.NoError(t, err)
	b, err := gen.Next(ctx, jan)
	require.NoError(t, err)
	c, err := gen.Next(ctx, feb)
	require.NoError(t, err)

	assert.Equal(t, "ELMS-202601-0001", a)
	assert.Equal(t, "ELMS-202601-0002", b)
	assert.Equal(t, "ELMS-202602-0001", c)
	assert.NotEqual(t, a, b)
}

func TestMemoryReferenceGeneratorConcurrentUnique(t *testing.T) {
	gen := NewMemoryReferenceGenerator("ELMS", nil)
	at := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	const n = 200
	refs := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := gen.Next(context.Background(), at)
			assert.NoError(t, err)
			refs <- ref
		}()
	}
	wg.Wait()
	close(refs)

	seen := map[string]bool{}
	for ref := range refs {
		assert.False(t, seen[ref], "duplicate %s", ref)
		seen[ref] = true
	}
	assert.Len(t, seen, n)
}

func TestMemoryReferenceGeneratorSeedsFromStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-0041")))
	require.NoError(t, store.Add(ctx, newDraft("l-2", "ELMS-202601-0007")))
	require.NoError(t, store.Add(ctx, newDraft("l-3", "OTHER-202601-0900")))

	gen := NewMemoryReferenceGenerator("ELMS", store)
	ref, err := gen.Next(ctx, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "ELMS-202601-0042", ref)
}

func TestMemoryReferenceGeneratorWidensPast9999(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Add(ctx, newDraft("l-1", "ELMS-202601-9999")))

	gen := NewMemoryReferenceGenerator("ELMS", store)
	ref, err := gen.Next(ctx, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "ELMS-202601-10000", ref)
}
