package oxonium

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glycokit/oxonium/blobstore"
	"github.com/glycokit/oxonium/codec"
	"github.com/glycokit/oxonium/spectrum"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	ix, records := threeRecordIndex(t)
	require.NoError(t, ix.Save(ctx, store, "catalog.oxidx"))

	loaded, err := Load(ctx, store, "catalog.oxidx", nil)
	require.NoError(t, err)
	assert.Equal(t, StateSimplified, loaded.State())
	assert.Equal(t, ix.Classes(), loaded.Classes())
	assert.Equal(t, ix.Fragments(), loaded.Fragments())

	// Matching against the reloaded index gives identical results.
	s := spectrum.New([]spectrum.Peak{
		{NeutralMass: 204.0, Intensity: 10},
		{NeutralMass: 366.0, Intensity: 20},
	})
	want, err := ix.Match(s, spectrum.Da(0.02))
	require.NoError(t, err)
	got, err := loaded.Match(s, spectrum.Da(0.02))
	require.NoError(t, err)

	assert.Equal(t, want.matchIndex, got.matchIndex)
	for _, rec := range records {
		assert.Equal(t, want.ByID(rec.ID), got.ByID(rec.ID))
		assert.Equal(t, want.ByGlycan(rec.Composition), got.ByGlycan(rec.Composition))
	}
}

func TestSnapshotRoundTripLocalStore(t *testing.T) {
	ctx := context.Background()
	store, err := blobstore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ix, _ := threeRecordIndex(t)
	require.NoError(t, ix.Save(ctx, store, "catalog.oxidx"))

	loaded, err := Load(ctx, store, "catalog.oxidx", nil)
	require.NoError(t, err)
	assert.Equal(t, ix.Classes(), loaded.Classes())
}

func TestSnapshotCompressionAndCodecVariants(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		opts []Option
	}{
		{"zstd+go-json", nil}, // defaults
		{"none+json", []Option{WithCompression(CompressionNone), WithCodec(codec.JSON{})}},
		{"zstd+json", []Option{WithCodec(codec.JSON{})}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			store := blobstore.NewMemoryStore()
			ix, _ := threeRecordIndex(t, tc.opts...)
			require.NoError(t, ix.Save(ctx, store, "ix"))

			// Load never needs the writer's options: the header carries them.
			loaded, err := Load(ctx, store, "ix", nil)
			require.NoError(t, err)
			assert.Equal(t, ix.Classes(), loaded.Classes())
			assert.Equal(t, ix.indexToSimplified, loaded.indexToSimplified)
		})
	}
}

func TestSaveRequiresSimplifiedIndex(t *testing.T) {
	ix := New(stubGenerator{})
	err := ix.Save(context.Background(), blobstore.NewMemoryStore(), "ix")
	assert.ErrorIs(t, err, ErrNotSimplified)
}

func TestLoadMissingBlob(t *testing.T) {
	_, err := Load(context.Background(), blobstore.NewMemoryStore(), "nope", nil)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoadRejectsMalformedSnapshots(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	// Bad magic.
	require.NoError(t, store.Put(ctx, "bad", []byte("XXXXXXXXXXXXXXXX")))
	_, err := Load(ctx, store, "bad", nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	// Truncated header.
	require.NoError(t, store.Put(ctx, "short", []byte("OXI1")))
	_, err = Load(ctx, store, "short", nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)

	// Valid header, garbage body.
	ix, _ := threeRecordIndex(t, WithCompression(CompressionNone))
	require.NoError(t, ix.Save(ctx, store, "ok"))
	data := snapshotBytes(t, store, "ok")
	data = append(data[:len(data)/2], []byte("garbage")...)
	require.NoError(t, store.Put(ctx, "corrupt", data))
	_, err = Load(ctx, store, "corrupt", nil)
	assert.ErrorIs(t, err, ErrInvalidSnapshot)
}

func snapshotBytes(t *testing.T, store blobstore.BlobStore, name string) []byte {
	t.Helper()
	rc, err := store.Open(context.Background(), name)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data
}
