package archive_test

import (
	"strings"
	"testing"
	"time"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/archive"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/checkpoint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCheckpoint() checkpoint.Checkpoint {
	return checkpoint.Checkpoint{
		ID:          "cp-1",
		Timestamp:   time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC),
		Label:       "add layout",
		Description: "builder edit",
		Files: checkpoint.Files{
			"app/layout.tsx": strings.Repeat("export default function Layout() {}\n", 200),
			"app/page.tsx":   "export default function Page() {}",
		},
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	for level := 1; level <= 4; level++ {
		codec, err := archive.NewCodec(level)
		require.NoError(t, err)
		assert.Equal(t, level, codec.Level())

		cp := sampleCheckpoint()
		data, err := codec.Encode(cp)
		require.NoError(t, err)

		raw, err := cp.Marshal()
		require.NoError(t, err)
		assert.Less(t, len(data), len(raw), "level %d should compress", level)

		got, err := codec.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, cp, got)

		codec.Close()
	}
}

func TestCodec_BinaryContent(t *testing.T) {
	codec, err := archive.NewCodec(archive.DefaultCompressionLevel)
	require.NoError(t, err)
	defer codec.Close()

	cp := sampleCheckpoint()
	cp.Files["public/logo.png"] = "\x89PNG\r\n\x1a\n\x00\x00\xff\xfe"
	cp.Files["assets/\xffraw.bin"] = "\x00\x01\x02\x80"
	cp.Files["locales/ja.json"] = `{"hello": "こんにちは"}`

	data, err := codec.Encode(cp)
	require.NoError(t, err)
	got, err := codec.Decode(data)
	require.NoError(t, err)

	assert.True(t, cp.Files.Equal(got.Files), "got %q", got.Files)
	assert.Equal(t, cp.Files["public/logo.png"], got.Files["public/logo.png"])
}

func TestCodec_InvalidLevel(t *testing.T) {
	for _, level := range []int{0, 5, -1} {
		_, err := archive.NewCodec(level)
		assert.Error(t, err, "level %d", level)
	}
}

func TestCodec_DecodeGarbage(t *testing.T) {
	codec, err := archive.NewCodec(archive.DefaultCompressionLevel)
	require.NoError(t, err)
	defer codec.Close()

	_, err = codec.Decode([]byte("definitely not zstd"))
	assert.Error(t, err)
}

func TestCodec_WithStore(t *testing.T) {
	codec, err := archive.NewCodec(archive.DefaultCompressionLevel)
	require.NoError(t, err)
	defer codec.Close()

	store, err := archive.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	cp := sampleCheckpoint()
	data, err := codec.Encode(cp)
	require.NoError(t, err)
	require.NoError(t, store.Save("sess-1", cp.ID, data))

	loaded, err := store.Load("sess-1", cp.ID)
	require.NoError(t, err)
	got, err := codec.Decode(loaded)
	require.NoError(t, err)
	assert.Equal(t, cp.Files, got.Files)
}
