package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dilg-bohol/issuance-harvester/internal/issuance"
)

func TestMemoryProviderUpsertIsIdempotent(t *testing.T) {
	t.Parallel()

	m := NewMemoryProvider()
	ctx := context.Background()

	rec := issuance.Record{Reference: "RA-001", Title: "Act One", Link: "https://x/1"}
	require.NoError(t, m.Upsert(ctx, "republic_acts", rec))
	require.NoError(t, m.Upsert(ctx, "republic_acts", rec))

	got, err := m.List(ctx, "republic_acts")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, rec, got[0])
}

func TestMemoryProviderUpsertOverwritesFields(t *testing.T) {
	t.Parallel()

	m := NewMemoryProvider()
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, "republic_acts", issuance.Record{
		Reference: "RA-001", Title: "Act One", Link: "https://x/1",
	}))
	require.NoError(t, m.Upsert(ctx, "republic_acts", issuance.Record{
		Reference: "RA-001", Title: "Act One (amended)", Link: "https://x/1", File: "ra-1.pdf",
	}))

	got, err := m.List(ctx, "republic_acts")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Act One (amended)", got[0].Title)
	require.Equal(t, "ra-1.pdf", got[0].File)
}

func TestMemoryProviderKeysRecordsWithoutReference(t *testing.T) {
	t.Parallel()

	m := NewMemoryProvider()
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, "legal_opinions", issuance.Record{Title: "Opinion", Date: "Jan 1"}))
	require.NoError(t, m.Upsert(ctx, "legal_opinions", issuance.Record{Title: "Opinion", Date: "Jan 1"}))
	require.NoError(t, m.Upsert(ctx, "legal_opinions", issuance.Record{Title: "Opinion", Date: "Feb 2"}))

	got, err := m.List(ctx, "legal_opinions")
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestMemoryProviderListPreservesInsertOrder(t *testing.T) {
	t.Parallel()

	m := NewMemoryProvider()
	ctx := context.Background()

	for _, ref := range []string{"RA-003", "RA-001", "RA-002"} {
		require.NoError(t, m.Upsert(ctx, "republic_acts", issuance.Record{
			Reference: ref, Title: "t", Link: "l",
		}))
	}

	got, err := m.List(ctx, "republic_acts")
	require.NoError(t, err)
	require.Equal(t, "RA-003", got[0].Reference)
	require.Equal(t, "RA-001", got[1].Reference)
	require.Equal(t, "RA-002", got[2].Reference)
}

func TestMemoryProviderTablesAreIsolated(t *testing.T) {
	t.Parallel()

	m := NewMemoryProvider()
	ctx := context.Background()

	require.NoError(t, m.Upsert(ctx, "republic_acts", issuance.Record{Reference: "RA-1", Title: "t", Link: "l"}))

	got, err := m.List(ctx, "joint_circulars")
	require.NoError(t, err)
	require.Empty(t, got)
}
