package local

import (
	"context"
	"strings"
	"testing"

	"github.com/marmos91/brokerd/pkg/broker/command"
	"github.com/marmos91/brokerd/pkg/store/file"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestWriteText_Modes(t *testing.T) {
	ctx := context.Background()

	t.Run("create then create fails", func(t *testing.T) {
		store := newTestStore(t)

		n, err := store.WriteText(ctx, "t1", "a.txt", "abc", command.WriteModeCreate)
		if err != nil {
			t.Fatalf("first create: %v", err)
		}
		if n != 3 {
			t.Errorf("bytes written = %d, want 3", n)
		}

		_, err = store.WriteText(ctx, "t1", "a.txt", "xyz", command.WriteModeCreate)
		if !file.IsExists(err) {
			t.Errorf("second create: got %v, want ErrExists", err)
		}
	})

	t.Run("append requires existing file", func(t *testing.T) {
		store := newTestStore(t)

		_, err := store.WriteText(ctx, "t1", "missing.txt", "abc", command.WriteModeAppend)
		if !file.IsPrecondition(err) {
			t.Errorf("append to missing: got %v, want ErrPrecondition", err)
		}
	})

	t.Run("append extends content", func(t *testing.T) {
		store := newTestStore(t)

		if _, err := store.WriteText(ctx, "t1", "a.txt", "abc", command.WriteModeCreate); err != nil {
			t.Fatal(err)
		}
		if _, err := store.WriteText(ctx, "t1", "a.txt", "def", command.WriteModeAppend); err != nil {
			t.Fatal(err)
		}

		got, err := store.ReadText(ctx, "t1", "a.txt")
		if err != nil {
			t.Fatal(err)
		}
		if got != "abcdef" {
			t.Errorf("content = %q, want abcdef", got)
		}
	})

	t.Run("appendOrCreate creates when absent", func(t *testing.T) {
		store := newTestStore(t)

		if _, err := store.WriteText(ctx, "t1", "a.txt", "abc", command.WriteModeAppendOrCreate); err != nil {
			t.Fatalf("appendOrCreate: %v", err)
		}
	})

	t.Run("overwrite replaces content", func(t *testing.T) {
		store := newTestStore(t)

		if _, err := store.WriteText(ctx, "t1", "a.txt", "long original content", command.WriteModeCreate); err != nil {
			t.Fatal(err)
		}
		if _, err := store.WriteText(ctx, "t1", "a.txt", "short", command.WriteModeOverwrite); err != nil {
			t.Fatal(err)
		}

		got, _ := store.ReadText(ctx, "t1", "a.txt")
		if got != "short" {
			t.Errorf("content = %q, want short", got)
		}
	})
}

func TestReadText_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.WriteText(ctx, "t1", "hello.txt", "hello", command.WriteModeCreate); err != nil {
		t.Fatal(err)
	}
	got, err := store.ReadText(ctx, "t1", "hello.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("round trip = %q, want hello", got)
	}

	_, err = store.ReadText(ctx, "t1", "missing.txt")
	if !file.IsNotFound(err) {
		t.Errorf("read missing: got %v, want ErrNotFound", err)
	}
}

func TestStatAndExists(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "t1", "")
	if err != nil || ok {
		t.Errorf("tenant dir should not exist yet (ok=%v err=%v)", ok, err)
	}

	if err := store.MakeDirectory(ctx, "t1"); err != nil {
		t.Fatal(err)
	}
	// Idempotent.
	if err := store.MakeDirectory(ctx, "t1"); err != nil {
		t.Errorf("second MakeDirectory: %v", err)
	}

	ok, _ = store.Exists(ctx, "t1", "")
	if !ok {
		t.Error("tenant dir should exist after MakeDirectory")
	}

	if _, err := store.WriteText(ctx, "t1", "a.txt", "abc", command.WriteModeCreate); err != nil {
		t.Fatal(err)
	}

	info, err := store.Stat(ctx, "t1", "a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if info.Type != file.TypeRegular || info.Size != 3 || info.Name != "a.txt" {
		t.Errorf("unexpected info: %+v", info)
	}

	dirInfo, err := store.Stat(ctx, "t1", "")
	if err != nil {
		t.Fatal(err)
	}
	if dirInfo.Type != file.TypeDirectory || dirInfo.Name != "t1" {
		t.Errorf("unexpected dir info: %+v", dirInfo)
	}

	_, err = store.Stat(ctx, "t1", "vanished.txt")
	if !file.IsNotFound(err) {
		t.Errorf("stat missing: got %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.WriteText(ctx, "t1", "a.txt", "abc", command.WriteModeCreate); err != nil {
		t.Fatal(err)
	}

	if err := store.Remove(ctx, "t1", "a.txt"); err != nil {
		t.Fatal(err)
	}

	// Second delete reports not found, never panics or corrupts.
	err := store.Remove(ctx, "t1", "a.txt")
	if !file.IsNotFound(err) {
		t.Errorf("double delete: got %v, want ErrNotFound", err)
	}

	// Removing the tenant directory through Remove is refused.
	err = store.Remove(ctx, "t1", "")
	if storeErr, ok := err.(*file.StoreError); !ok || storeErr.Code != file.ErrIsDirectory {
		t.Errorf("remove directory via Remove: got %v, want ErrIsDirectory", err)
	}
}

func TestRemoveDirectory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.WriteText(ctx, "t1", "a.txt", "abc", command.WriteModeCreate); err != nil {
		t.Fatal(err)
	}

	err := store.RemoveDirectory(ctx, "t1", "", false)
	if storeErr, ok := err.(*file.StoreError); !ok || storeErr.Code != file.ErrNotEmpty {
		t.Errorf("non-recursive on non-empty: got %v, want ErrNotEmpty", err)
	}

	if err := store.RemoveDirectory(ctx, "t1", "", true); err != nil {
		t.Fatalf("recursive remove: %v", err)
	}

	ok, _ := store.Exists(ctx, "t1", "")
	if ok {
		t.Error("tenant dir should be gone")
	}
}

func TestRename(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.WriteText(ctx, "t1", "from.txt", "abc", command.WriteModeCreate); err != nil {
		t.Fatal(err)
	}
	if _, err := store.WriteText(ctx, "t1", "to.txt", "xyz", command.WriteModeCreate); err != nil {
		t.Fatal(err)
	}

	err := store.Rename(ctx, "t1", "from.txt", "to.txt", false)
	if !file.IsExists(err) {
		t.Errorf("rename onto existing without overwrite: got %v, want ErrExists", err)
	}

	if err := store.Rename(ctx, "t1", "from.txt", "to.txt", true); err != nil {
		t.Fatalf("rename with overwrite: %v", err)
	}

	got, _ := store.ReadText(ctx, "t1", "to.txt")
	if got != "abc" {
		t.Errorf("target content = %q, want abc", got)
	}

	err = store.Rename(ctx, "t1", "ghost.txt", "other.txt", false)
	if !file.IsNotFound(err) {
		t.Errorf("rename missing source: got %v, want ErrNotFound", err)
	}
}

func TestListChildren(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	infos, err := store.ListChildren(ctx, "nobody")
	if err != nil {
		t.Fatalf("listing missing tenant: %v", err)
	}
	if len(infos) != 0 {
		t.Errorf("missing tenant listing = %d entries, want 0", len(infos))
	}

	for _, name := range []string{"a.txt", "b.txt", "c.json"} {
		if _, err := store.WriteText(ctx, "t1", name, "x", command.WriteModeCreate); err != nil {
			t.Fatal(err)
		}
	}

	infos, err = store.ListChildren(ctx, "t1")
	if err != nil {
		t.Fatal(err)
	}
	if len(infos) != 3 {
		t.Errorf("listing = %d entries, want 3", len(infos))
	}
}

// TestTenantIsolation verifies that two tenants never see each other's
// files and that malformed segments are refused before any I/O.
func TestTenantIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.WriteText(ctx, "t1", "secret.txt", "t1 data", command.WriteModeCreate); err != nil {
		t.Fatal(err)
	}

	ok, err := store.Exists(ctx, "t2", "secret.txt")
	if err != nil || ok {
		t.Errorf("t2 must not see t1's file (ok=%v err=%v)", ok, err)
	}

	for _, bad := range []string{"../t1", `..\t1`, "a/b"} {
		if _, err := store.Exists(ctx, bad, "secret.txt"); err == nil {
			t.Errorf("tenant segment %q should be refused", bad)
		}
	}
	if _, err := store.Exists(ctx, "t2", "../t1/secret.txt"); err == nil {
		t.Error("name with separators should be refused")
	}
}

func TestWriteText_PathLengthLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// The composed path limit is 255 characters including the root; a long
	// root plus a long name can exceed it even when both parts are legal.
	longName := strings.Repeat("a", 64)
	tenant := strings.Repeat("b", 64)
	if len(store.Root())+len(tenant)+len(longName)+2 <= 255 {
		t.Skip("temp root too short to exceed the path limit")
	}

	_, err := store.WriteText(ctx, tenant, longName, "x", command.WriteModeCreate)
	if err == nil {
		t.Error("over-long composed path should be refused")
	}
}
