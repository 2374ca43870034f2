// Package scan implements the recursive filesystem searches used to find
// sidecar artwork: the audio-bearing directory locator and the largest-image
// finder. Both are built on Walk, a lazy depth-first traversal.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/mmcdole/sleeve/internal/domain"
	"github.com/mmcdole/sleeve/internal/pathutil"
)

// Entry is a non-directory item yielded by Walk
type Entry struct {
	Dir  string // directory that holds the entry
	Path string
	Name string
	Type fs.FileMode // type bits only, as reported by the directory read
}

// WalkOptions tunes a traversal
type WalkOptions struct {
	// Compare orders siblings within a directory. Nil keeps os.ReadDir order.
	Compare func(a, b string) int

	// OnSkip is called for every subdirectory that could not be read
	OnSkip func(dir string, err error)
}

// frame is one directory on the explicit traversal stack
type frame struct {
	dir     string
	entries []os.DirEntry
	next    int
}

// Walk lazily yields every non-directory entry below root, depth-first.
// A subdirectory is entered at the position it sorts to among its siblings,
// so its contents are yielded before any later sibling.
//
// If root cannot be read the sequence yields a single error wrapping
// domain.ErrRootUnreadable. Unreadable subdirectories are skipped. Symlinked
// directories are yielded as entries, never entered.
func Walk(ctx context.Context, root string, opts WalkOptions) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		entries, err := readDir(root, opts.Compare)
		if err != nil {
			yield(Entry{}, fmt.Errorf("%w: %s: %w", domain.ErrRootUnreadable, root, err))
			return
		}

		stack := []*frame{{dir: root, entries: entries}}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				yield(Entry{}, err)
				return
			}

			top := stack[len(stack)-1]
			if top.next >= len(top.entries) {
				stack = stack[:len(stack)-1]
				continue
			}
			de := top.entries[top.next]
			top.next++

			name := de.Name()
			if name == "." || name == ".." {
				continue
			}
			path := pathutil.Join(top.dir, name)

			if de.IsDir() {
				children, err := readDir(path, opts.Compare)
				if err != nil {
					if opts.OnSkip != nil {
						opts.OnSkip(path, err)
					}
					continue
				}
				stack = append(stack, &frame{dir: path, entries: children})
				continue
			}

			if !yield(Entry{Dir: top.dir, Path: path, Name: name, Type: de.Type()}, nil) {
				return
			}
		}
	}
}

func readDir(dir string, compare func(a, b string) int) ([]os.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	if compare != nil {
		slices.SortStableFunc(entries, func(a, b os.DirEntry) int {
			return compare(a.Name(), b.Name())
		})
	}
	return entries, nil
}

// CompareFeaturedFirst orders names beginning with "_" before all others,
// then byte-wise lexicographically. Curators use the prefix to force a
// featured directory to be visited first.
func CompareFeaturedFirst(a, b string) int {
	aFeatured := strings.HasPrefix(a, "_")
	bFeatured := strings.HasPrefix(b, "_")
	switch {
	case aFeatured && !bFeatured:
		return -1
	case !aFeatured && bFeatured:
		return 1
	}
	return strings.Compare(a, b)
}
