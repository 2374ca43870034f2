package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"testing"

	"github.com/mmcdole/sleeve/internal/domain"
)

// writeTree creates files under root; a value of -1 makes a directory
func writeTree(t *testing.T, root string, files map[string]int) {
	t.Helper()
	for rel, size := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if size < 0 {
			if err := os.MkdirAll(p, 0755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(strings.Repeat("x", size)), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestCompareFeaturedFirst(t *testing.T) {
	names := []string{"beta", "Alpha", "_featured", "alpha", "_a"}
	want := []string{"_a", "_featured", "Alpha", "alpha", "beta"}

	got := slices.Clone(names)
	slices.SortFunc(got, CompareFeaturedFirst)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestWalk_VisitsFeaturedFirst(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"Alpha/a.txt":     1,
		"beta/b.txt":      1,
		"_featured/f.txt": 1,
	})

	var dirs []string
	for e, err := range Walk(context.Background(), root, WalkOptions{Compare: CompareFeaturedFirst}) {
		if err != nil {
			t.Fatal(err)
		}
		dirs = append(dirs, filepath.Base(e.Dir))
	}

	want := []string{"_featured", "Alpha", "beta"}
	if len(dirs) != len(want) {
		t.Fatalf("visited %v, want %v", dirs, want)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Fatalf("visited %v, want %v", dirs, want)
		}
	}
}

func TestWalk_StopsWhenConsumerBreaks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a.txt": 1, "b.txt": 1, "c.txt": 1})

	count := 0
	for _, err := range Walk(context.Background(), root, WalkOptions{}) {
		if err != nil {
			t.Fatal(err)
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestWalk_CancelledContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a.txt": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, err := range Walk(ctx, root, WalkOptions{}) {
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err = %v, want context.Canceled", err)
		}
		return
	}
	t.Fatal("expected an error from a cancelled walk")
}

func TestFindAudioDir(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]int
		want    string
		wantErr error
	}{
		{
			name:  "audio in root",
			files: map[string]int{"song.mp3": 1, "sub/other.flac": 1},
			want:  ".",
		},
		{
			name: "featured directory wins",
			files: map[string]int{
				"alpha/01.flac":    1,
				"_featured/01.ogg": 1,
				"beta/01.mp3":      1,
			},
			want: "_featured",
		},
		{
			name: "depth first into earlier sibling",
			files: map[string]int{
				"a/deep/er/01.wav": 1,
				"b/01.mp3":         1,
			},
			want: "a/deep/er",
		},
		{
			name: "subdirectory sorted before file is entered first",
			files: map[string]int{
				"A/x.m4a": 1,
				"z.mp3":   1,
			},
			want: "A",
		},
		{
			name:    "no audio anywhere",
			files:   map[string]int{"cover.jpg": 1, "docs/readme.txt": 1, "empty": -1},
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "case-sensitive extensions",
			files:   map[string]int{"LOUD.MP3": 1},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, tt.files)

			got, err := FindAudioDir(context.Background(), root)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := filepath.Join(root, filepath.FromSlash(tt.want))
			if filepath.Clean(got) != filepath.Clean(want) {
				t.Errorf("FindAudioDir() = %q, want %q", got, want)
			}
		})
	}
}

func TestFindAudioDir_UnreadableRoot(t *testing.T) {
	_, err := FindAudioDir(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, domain.ErrRootUnreadable) {
		t.Fatalf("err = %v, want ErrRootUnreadable", err)
	}
}

func TestFindLargestImage(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{
		"small.jpg":           10 * 1024,
		"nested/big.PNG":      500 * 1024,
		"nested/deeper/m.gif": 200 * 1024,
		"huge.bmp":            900 * 1024, // not a recognised extension
		"track.flac":          2000 * 1024,
	})

	got, err := FindLargestImage(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got.Path) != "big.PNG" {
		t.Errorf("FindLargestImage() = %q, want big.PNG", got.Path)
	}
	if got.Size != 500*1024 {
		t.Errorf("Size = %d, want %d", got.Size, 500*1024)
	}
}

func TestFindLargestImage_TieKeepsFirstSeen(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"a.jpg": 100, "b.jpg": 100})

	got, err := FindLargestImage(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got.Path) != "a.jpg" {
		t.Errorf("tie resolved to %q, want a.jpg", got.Path)
	}
}

func TestFindLargestImage_NoneFound(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]int{"01.flac": 10, "empty.jpg": 0})

	_, err := FindLargestImage(context.Background(), root)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFindLargestImage_UnreadableRootIsNotFound(t *testing.T) {
	_, err := FindLargestImage(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, domain.ErrRootUnreadable) {
		t.Fatalf("err = %v, want ErrRootUnreadable as well", err)
	}
}

func TestFindLargestImage_SkipsDanglingSymlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]int{"real.jpg": 50})
	if err := os.Symlink(filepath.Join(root, "gone.jpg"), filepath.Join(root, "dangling.jpg")); err != nil {
		t.Fatal(err)
	}

	got, err := FindLargestImage(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got.Path) != "real.jpg" {
		t.Errorf("got %q, want real.jpg", got.Path)
	}
}

func TestFindLargestImage_SkipsUnreadableSubdir(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]int{"ok/cover.jpg": 20, "locked/big.jpg": 999})
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	got, err := FindLargestImage(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got.Path) != "cover.jpg" {
		t.Errorf("got %q, want cover.jpg", got.Path)
	}
}
