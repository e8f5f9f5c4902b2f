package fsextender

import (
	"os"
	"testing"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
	"github.com/spf13/afero"
)

func mustNewMemFS() absfs.FileSystem {
	mfs, err := memfs.NewFS()
	if err != nil {
		panic(err)
	}
	return mfs
}

// TestAbsFSInterface verifies FS can provide absfs.FileSystem
func TestAbsFSInterface(t *testing.T) {
	f := New(afero.NewMemMapFs())

	var _ absfs.FileSystem = f.FileSystem()
}

// TestViewPathsUseSlash verifies the view reports slash paths regardless of host.
func TestViewPathsUseSlash(t *testing.T) {
	if absfs.Separator != '/' || absfs.ListSeparator != ':' {
		t.Fatalf("absfs separators = %c %c, want / :", absfs.Separator, absfs.ListSeparator)
	}
	f := New(afero.NewMemMapFs())
	f.MkdirAll("/a/b", 0755)
	fs := f.FileSystem()
	if err := fs.Chdir("a"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	if err := fs.Chdir("b/../b"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	if cwd, _ := fs.Getwd(); cwd != "/a/b" {
		t.Errorf("Getwd() = %s, want /a/b", cwd)
	}
}

// TestTruncate tests the Truncate method via FileSystem interface
func TestTruncate(t *testing.T) {
	f := New(afero.NewMemMapFs())
	if err := f.WriteFile("/test.txt", []byte("Hello, World!"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := f.FileSystem().Truncate("/test.txt", 5); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}

	content, err := f.ReadFile("/test.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(content) != "Hello" {
		t.Errorf("Truncated content = '%s', want 'Hello'", content)
	}
}

// TestTruncateDirectory verifies truncate fails on directories
func TestTruncateDirectory(t *testing.T) {
	f := New(afero.NewMemMapFs())
	f.Mkdir("/testdir", 0755)

	err := f.FileSystem().Truncate("/testdir", 0)
	if err == nil {
		t.Fatal("Truncate on directory should fail")
	}
	if _, ok := err.(*os.PathError); !ok {
		t.Errorf("Expected PathError, got: %T: %v", err, err)
	}
}

// TestFileSystemRemoveAll verifies the view removes trees with the recursive
// remover and refuses the root.
func TestFileSystemRemoveAll(t *testing.T) {
	base := afero.NewMemMapFs()
	makeTree(t, base, "/app", "cache/a/b.txt", "cache/c.txt", "keep.txt")
	fs := New(base).FileSystem()

	if err := fs.Chdir("/app"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	if err := fs.RemoveAll("cache"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if ok, _ := afero.Exists(base, "/app/cache"); ok {
		t.Error("/app/cache should be gone")
	}
	if ok, _ := afero.Exists(base, "/app/keep.txt"); !ok {
		t.Error("/app/keep.txt should be kept")
	}
	if err := fs.RemoveAll("/"); err == nil {
		t.Error("RemoveAll(/) should fail")
	}
}

// TestFileSystemRemoveAllOsFs verifies a relative RemoveAll on the OS resolves
// against the view's directory, not the process directory.
func TestFileSystemRemoveAllOsFs(t *testing.T) {
	tmp := t.TempDir()
	base := afero.NewOsFs()
	makeTree(t, base, tmp, "proc/cache/p.txt", "app/cache/a.txt", "app/keep.txt")
	t.Chdir(tmp + "/proc")

	fs := NewOsFs().FileSystem()
	if err := fs.Chdir(tmp + "/app"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	if err := fs.RemoveAll("cache"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if ok, _ := afero.Exists(base, tmp+"/app/cache"); ok {
		t.Error("app/cache should be gone")
	}
	if ok, _ := afero.Exists(base, tmp+"/proc/cache/p.txt"); !ok {
		t.Error("proc/cache belongs to the process directory and should be kept")
	}
	if ok, _ := afero.Exists(base, tmp+"/app/keep.txt"); !ok {
		t.Error("app/keep.txt should be kept")
	}
}

// TestFileSystemRelativeNames verifies every delegated call resolves relative
// names against the view's directory.
func TestFileSystemRelativeNames(t *testing.T) {
	base := afero.NewMemMapFs()
	makeTree(t, base, "/app", "data.txt", "cache/x.txt")
	makeTree(t, base, "", "data.txt", "cache/x.txt")
	fs := New(base).FileSystem()
	if err := fs.Chdir("/app"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}

	if err := fs.MkdirAll("logs/today", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if ok, _ := afero.DirExists(base, "/app/logs/today"); !ok {
		t.Error("MkdirAll should create /app/logs/today")
	}
	if ok, _ := afero.Exists(base, "/logs"); ok {
		t.Error("MkdirAll should not create /logs")
	}

	data, err := fs.ReadFile("data.txt")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != "data.txt" {
		t.Errorf("ReadFile = %q, want %q", data, "data.txt")
	}

	entries, err := fs.ReadDir("cache")
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "x.txt" {
		t.Errorf("ReadDir(cache) = %v, want [x.txt]", entries)
	}

	if err := fs.Truncate("data.txt", 2); err != nil {
		t.Fatalf("Truncate failed: %v", err)
	}
	if got, _ := afero.ReadFile(base, "/app/data.txt"); string(got) != "da" {
		t.Errorf("/app/data.txt = %q, want %q", got, "da")
	}
	if got, _ := afero.ReadFile(base, "/data.txt"); string(got) != "data.txt" {
		t.Errorf("/data.txt = %q, should be untouched", got)
	}

	if err := fs.RemoveAll("cache"); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if ok, _ := afero.Exists(base, "/cache/x.txt"); !ok {
		t.Error("/cache should be untouched")
	}
}

// TestFileSystemRemoveAllRefusesResolvedRoot verifies relative names that land
// on the root are refused.
func TestFileSystemRemoveAllRefusesResolvedRoot(t *testing.T) {
	base := afero.NewMemMapFs()
	makeTree(t, base, "/app", "keep.txt")
	fs := New(base).FileSystem()
	if err := fs.Chdir("/app"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	for _, name := range []string{"..", "../app/..", "/app/.."} {
		if err := fs.RemoveAll(name); err == nil {
			t.Errorf("RemoveAll(%q) should fail", name)
		}
	}
	if err := fs.Chdir("/"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	if err := fs.RemoveAll("."); err == nil {
		t.Error("RemoveAll(.) in / should fail")
	}
	if ok, _ := afero.Exists(base, "/app/keep.txt"); !ok {
		t.Error("/app/keep.txt should be kept")
	}
}

// TestChdirNotDirectory verifies Chdir refuses files.
func TestChdirNotDirectory(t *testing.T) {
	base := afero.NewMemMapFs()
	makeTree(t, base, "/app", "keep.txt")
	fs := New(base).FileSystem()
	if err := fs.Chdir("/app/keep.txt"); err == nil {
		t.Fatal("Chdir to a file should fail")
	}
	if cwd, _ := fs.Getwd(); cwd != "/" {
		t.Errorf("Getwd() = %s, want /", cwd)
	}
}

// TestExtendFilerPattern verifies each FileSystem() call has its own cwd
func TestExtendFilerPattern(t *testing.T) {
	f := New(afero.NewMemMapFs())
	f.MkdirAll("/tmp", 0755)
	f.MkdirAll("/etc", 0755)

	fs1 := f.FileSystem()
	if err := fs1.Chdir("/tmp"); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	fs2 := f.FileSystem()
	if err := fs2.Chdir("/etc"); err != nil {
		t.Fatalf("Second Chdir failed: %v", err)
	}

	if cwd, _ := fs1.Getwd(); cwd != "/tmp" {
		t.Errorf("First fs cwd changed! Got %s, want /tmp", cwd)
	}
	if cwd, _ := fs2.Getwd(); cwd != "/etc" {
		t.Errorf("Second fs cwd = %s, want /etc", cwd)
	}
}

// TestFromAbsFS wraps a memfs filesystem and removes a tree through it.
func TestFromAbsFS(t *testing.T) {
	mfs := mustNewMemFS()
	f := New(FromAbsFS(mfs))

	for _, dir := range []string{"/d2/folder1", "/d2/emptyFolder"} {
		if err := f.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("MkdirAll %s failed: %v", dir, err)
		}
	}
	for _, name := range []string{"/d2/file", "/d2/folder1/file.txt"} {
		if err := f.WriteFile(name, []byte(name), 0644); err != nil {
			t.Fatalf("WriteFile %s failed: %v", name, err)
		}
	}

	if err := f.Rm("/d2/folder1", RmOptions{Recursive: true}); err != nil {
		t.Fatalf("Rm failed: %v", err)
	}
	if _, err := mfs.Stat("/d2/folder1"); err == nil {
		t.Error("/d2/folder1 should be gone")
	}
	for _, name := range []string{"/d2/file", "/d2/emptyFolder"} {
		if _, err := mfs.Stat(name); err != nil {
			t.Errorf("%s should be kept: %v", name, err)
		}
	}

	// Ownership changes stay best-effort through the bridge.
	if err := f.Lchown("/d2/file", 0, 0); err != nil {
		t.Errorf("Lchown failed: %v", err)
	}
}

// BenchmarkFileSystemVsDirectAccess compares absfs.FileSystem vs direct access
func BenchmarkFileSystemVsDirectAccess(b *testing.B) {
	f := New(afero.NewMemMapFs())
	f.WriteFile("/bench/file.txt", []byte("benchmark data"), 0644)
	fs := f.FileSystem()

	b.Run("Direct", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := f.Stat("/bench/file.txt"); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("FileSystem", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := fs.Stat("/bench/file.txt"); err != nil {
				b.Fatal(err)
			}
		}
	})
}
