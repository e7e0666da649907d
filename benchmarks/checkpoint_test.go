package benchmarks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/archive"
	"github.com/randalmurphal/filecheckpoint/pkg/filecheckpoint/checkpoint"
)

// BenchmarkHistory_Create measures snapshotting into a full history.
func BenchmarkHistory_Create(b *testing.B) {
	h := checkpoint.NewHistory()
	files := createProject(20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Create(files, "edit")
	}
}

// BenchmarkHistory_Restore measures restoring from a full history.
func BenchmarkHistory_Restore(b *testing.B) {
	h := checkpoint.NewHistory()
	files := createProject(20)
	var ids []string
	for i := 0; i < checkpoint.DefaultCapacity; i++ {
		ids = append(ids, h.Create(files, "edit").ID)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = h.Restore(ids[i%len(ids)])
	}
}

// BenchmarkMemoryStore_Save measures in-memory archive save.
func BenchmarkMemoryStore_Save(b *testing.B) {
	store := archive.NewMemoryStore()
	data := encodedCheckpoint(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Save("sess-1", checkpointID(i%100), data)
	}
}

// BenchmarkSQLiteStore_Save measures SQLite archive save.
func BenchmarkSQLiteStore_Save(b *testing.B) {
	store := createSQLiteStore(b)
	data := encodedCheckpoint(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Save("sess-1", checkpointID(i%100), data)
	}
}

// BenchmarkSQLiteStore_Load measures SQLite archive load.
func BenchmarkSQLiteStore_Load(b *testing.B) {
	store := createSQLiteStore(b)
	_ = store.Save("sess-1", "cp-1", encodedCheckpoint(b))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Load("sess-1", "cp-1")
	}
}

// BenchmarkCodec_Encode measures compressing a checkpoint.
func BenchmarkCodec_Encode(b *testing.B) {
	for level := 1; level <= 4; level++ {
		b.Run(fmt.Sprintf("level-%d", level), func(b *testing.B) {
			codec, err := archive.NewCodec(level)
			if err != nil {
				b.Fatal(err)
			}
			defer codec.Close()
			cp := checkpoint.NewHistory().Create(createProject(20), "edit")

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = codec.Encode(cp)
			}
		})
	}
}

// BenchmarkManager_Create compares Create with and without an archive.
func BenchmarkManager_Create(b *testing.B) {
	files := createProject(20)

	b.Run("memory-only", func(b *testing.B) {
		m, _ := filecheckpoint.New(filecheckpoint.WithLogger(discardLogger()))
		defer m.Close()
		ctx := context.Background()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = m.Create(ctx, "sess-1", files, "edit")
		}
	})

	b.Run("sqlite-archive", func(b *testing.B) {
		m, _ := filecheckpoint.New(
			filecheckpoint.WithLogger(discardLogger()),
			filecheckpoint.WithArchive(createSQLiteStore(b)),
		)
		defer m.Close()
		ctx := context.Background()

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = m.Create(ctx, "sess-1", files, "edit")
		}
	})
}

// Helper functions

func createProject(n int) checkpoint.Files {
	files := make(checkpoint.Files, n)
	for i := 0; i < n; i++ {
		files[fmt.Sprintf("src/component%d.tsx", i)] = strings.Repeat("export const x = 1;\n", 50)
	}
	return files
}

func encodedCheckpoint(b *testing.B) []byte {
	b.Helper()
	codec, err := archive.NewCodec(archive.DefaultCompressionLevel)
	if err != nil {
		b.Fatal(err)
	}
	defer codec.Close()

	data, err := codec.Encode(checkpoint.NewHistory().Create(createProject(20), "edit"))
	if err != nil {
		b.Fatal(err)
	}
	return data
}

func createSQLiteStore(b *testing.B) *archive.SQLiteStore {
	b.Helper()
	store, err := archive.NewSQLiteStore(filepath.Join(b.TempDir(), "bench.db"))
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { _ = store.Close() })
	return store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func checkpointID(i int) string {
	return fmt.Sprintf("cp-%d", i)
}
