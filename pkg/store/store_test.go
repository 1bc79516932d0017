package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/tyrandev/mindmap-canvas-sub000/pkg/errors"
	"github.com/tyrandev/mindmap-canvas-sub000/pkg/observability"
)

const treeA = `{"id":0,"x":1335,"y":860,"text":"Mindmap","radius":50,"children":[]}`
const treeB = `{"id":0,"x":10,"y":20,"text":"Other","width":150,"height":60,"children":[]}`

// testStore runs the behavior every backend must share.
func testStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing", func(t *testing.T) {
		data, ok, err := s.Load(ctx, "nope")
		if err != nil || ok || data != nil {
			t.Fatalf("Load(nope) = %q, %v, %v; want nil, false, nil", data, ok, err)
		}
	})

	t.Run("save and load", func(t *testing.T) {
		if err := s.Save(ctx, "alpha", []byte(treeA)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, ok, err := s.Load(ctx, "alpha")
		if err != nil || !ok {
			t.Fatalf("Load: ok=%v err=%v", ok, err)
		}
		assertJSONEqual(t, data, treeA)
	})

	t.Run("overwrite", func(t *testing.T) {
		if err := s.Save(ctx, "alpha", []byte(treeB)); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, _, _ := s.Load(ctx, "alpha")
		assertJSONEqual(t, data, treeB)
	})

	t.Run("list sorted", func(t *testing.T) {
		for _, name := range []string{"gamma", "beta"} {
			if err := s.Save(ctx, name, []byte(treeA)); err != nil {
				t.Fatalf("Save(%s): %v", name, err)
			}
		}
		names, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		want := []string{"alpha", "beta", "gamma"}
		if !slices.Equal(names, want) {
			t.Errorf("List() = %v, want %v", names, want)
		}
	})

	t.Run("rename", func(t *testing.T) {
		if err := s.Rename(ctx, "beta", "delta"); err != nil {
			t.Fatalf("Rename: %v", err)
		}
		if _, ok, _ := s.Load(ctx, "beta"); ok {
			t.Error("old name still present")
		}
		data, ok, _ := s.Load(ctx, "delta")
		if !ok {
			t.Fatal("new name missing")
		}
		assertJSONEqual(t, data, treeA)
	})

	t.Run("rename errors", func(t *testing.T) {
		if err := s.Rename(ctx, "missing", "x"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("Rename(missing) = %v, want NOT_FOUND", err)
		}
		if err := s.Rename(ctx, "delta", "gamma"); !errors.Is(err, errors.ErrCodeAlreadyExists) {
			t.Errorf("Rename onto existing = %v, want ALREADY_EXISTS", err)
		}
		if err := s.Rename(ctx, "delta", "a/b"); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Rename to bad name = %v, want INVALID_NAME", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := s.Delete(ctx, "gamma"); err != nil {
			t.Fatalf("Delete: %v", err)
		}
		if _, ok, _ := s.Load(ctx, "gamma"); ok {
			t.Error("deleted map still present")
		}
		if err := s.Delete(ctx, "gamma"); !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("second Delete = %v, want NOT_FOUND", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		for _, name := range []string{"", "  ", "../up", ".hidden"} {
			if err := s.Save(ctx, name, []byte(treeA)); !errors.Is(err, errors.ErrCodeInvalidName) {
				t.Errorf("Save(%q) = %v, want INVALID_NAME", name, err)
			}
		}
		if err := s.Save(ctx, "broken", []byte("{")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("Save(bad json) = %v, want INVALID_FORMAT", err)
		}
	})
}

func assertJSONEqual(t *testing.T, got []byte, want string) {
	t.Helper()
	var g, w any
	if err := json.Unmarshal(got, &g); err != nil {
		t.Fatalf("stored data is not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(g) != fmt.Sprint(w) {
		t.Errorf("data = %s, want %s", got, want)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
}

func TestFileStoreEnvelope(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Save(ctx, "plans", []byte(treeA)); err != nil {
		t.Fatal(err)
	}
	first := readRecord(t, filepath.Join(dir, "plans.json"))
	if first.ID == "" || first.Name != "plans" || first.CreatedAt.IsZero() {
		t.Fatalf("envelope = %+v", first)
	}

	if err := s.Save(ctx, "plans", []byte(treeB)); err != nil {
		t.Fatal(err)
	}
	second := readRecord(t, filepath.Join(dir, "plans.json"))
	if second.ID != first.ID {
		t.Errorf("overwrite changed id %s -> %s", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("overwrite changed created_at")
	}

	info, err := os.Stat(filepath.Join(dir, "plans.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}
	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600)
	os.Mkdir(filepath.Join(dir, "sub.json"), 0700)

	names, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("List() = %v, want empty", names)
	}
}

func readRecord(t *testing.T, path string) Record {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("default is file", func(t *testing.T) {
		s, err := Open(ctx, Config{Dir: t.TempDir()})
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		inner := s.(*instrumented).Store
		if _, ok := inner.(*FileStore); !ok {
			t.Errorf("backend = %T, want *FileStore", inner)
		}
	})

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, Config{Backend: BackendMemory})
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := s.(*instrumented).Store.(*MemoryStore); !ok {
			t.Errorf("backend = %T, want *MemoryStore", s)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Open(ctx, Config{Backend: "floppy"})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Open(floppy) = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("postgres needs dsn", func(t *testing.T) {
		_, err := Open(ctx, Config{Backend: BackendPostgres})
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("Open(postgres) = %v, want INVALID_INPUT", err)
		}
	})
}

type recordingHooks struct {
	observability.NoopStoreHooks
	ops []string
}

func (h *recordingHooks) OnStoreOp(_ context.Context, backend, op string, _ time.Duration, err error) {
	h.ops = append(h.ops, fmt.Sprintf("%s:%s:%v", backend, op, err == nil))
}

func TestInstrument(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s := Instrument(NewMemoryStore(), "memory")
	s.Save(ctx, "a", []byte(treeA))
	s.Load(ctx, "a")
	s.Delete(ctx, "zzz")

	want := []string{"memory:save:true", "memory:load:true", "memory:delete:false"}
	if !slices.Equal(hooks.ops, want) {
		t.Errorf("ops = %v, want %v", hooks.ops, want)
	}
}

// The backends below run only when a server is named in the environment.

func testName(t *testing.T) string {
	return fmt.Sprintf("mindcanvas-test-%d", time.Now().UnixNano())
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("MINDCANVAS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MINDCANVAS_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, Key: testName(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		s.client.Del(ctx, s.key)
		s.Close()
	}()
	testStore(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MINDCANVAS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("MINDCANVAS_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := NewMongoStore(ctx, MongoConfig{URI: uri, Collection: testName(t)})
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		s.coll.Drop(ctx)
		s.Close()
	}()
	testStore(t, s)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("MINDCANVAS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("MINDCANVAS_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if _, err := s.pool.Exec(ctx, `DELETE FROM maps`); err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
}
