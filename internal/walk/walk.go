// Package walk enumerates a directory tree breadth-first or depth-first with an
// optional depth limit, tolerating access errors on request.
package walk

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// Order selects the traversal strategy.
type Order int

const (
	// DepthFirst visits a directory's whole subtree before its next sibling.
	DepthFirst Order = iota
	// BreadthFirst visits every entry at one depth before going deeper.
	BreadthFirst
)

// Unlimited disables the depth limit.
const Unlimited = -1

// SkipDir returned from a WalkFunc on a directory prevents descending into it.
var SkipDir = errors.New("skip this directory")

// Options control a walk.
type Options struct {
	// Depth is the deepest level reported; the root's children are at depth 1.
	Depth int
	Order Order
	// IgnoreAccessErrors skips directories that cannot be read because of
	// EACCES or EPERM instead of failing the walk.
	IgnoreAccessErrors bool
}

// DefaultOptions walks the whole tree depth-first.
func DefaultOptions() Options {
	return Options{Depth: Unlimited, Order: DepthFirst}
}

// Entry is one visited filesystem entry.
type Entry struct {
	Path  string
	Info  os.FileInfo
	Depth int
}

// WalkFunc is called for every entry below the root.
type WalkFunc func(e Entry) error

// Walk calls fn for every entry below root. Symbolic links are reported but never
// followed. The root itself is not reported.
func Walk(fsys afero.Fs, root string, opts Options, fn WalkFunc) error {
	info, err := lstat(fsys, root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return nil
	}
	if opts.Order == BreadthFirst {
		return walkBreadth(fsys, root, opts, fn)
	}
	return walkDepth(fsys, root, 1, opts, fn)
}

// List collects every entry Walk would visit.
func List(fsys afero.Fs, root string, opts Options) ([]Entry, error) {
	var out []Entry
	err := Walk(fsys, root, opts, func(e Entry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}

func walkDepth(fsys afero.Fs, dir string, depth int, opts Options, fn WalkFunc) error {
	if opts.Depth != Unlimited && depth > opts.Depth {
		return nil
	}
	infos, err := readDir(fsys, dir, opts)
	if err != nil {
		return err
	}
	for _, info := range infos {
		e := Entry{Path: filepath.Join(dir, info.Name()), Info: info, Depth: depth}
		if err := fn(e); err != nil {
			if errors.Is(err, SkipDir) && info.IsDir() {
				continue
			}
			return err
		}
		if info.IsDir() {
			if err := walkDepth(fsys, e.Path, depth+1, opts, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

func walkBreadth(fsys afero.Fs, root string, opts Options, fn WalkFunc) error {
	type pending struct {
		path  string
		depth int
	}
	queue := []pending{{root, 1}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if opts.Depth != Unlimited && cur.depth > opts.Depth {
			continue
		}
		infos, err := readDir(fsys, cur.path, opts)
		if err != nil {
			return err
		}
		for _, info := range infos {
			e := Entry{Path: filepath.Join(cur.path, info.Name()), Info: info, Depth: cur.depth}
			if err := fn(e); err != nil {
				if errors.Is(err, SkipDir) && info.IsDir() {
					continue
				}
				return err
			}
			if info.IsDir() {
				queue = append(queue, pending{e.Path, cur.depth + 1})
			}
		}
	}
	return nil
}

func readDir(fsys afero.Fs, dir string, opts Options) ([]os.FileInfo, error) {
	infos, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if opts.IgnoreAccessErrors && errcode.Is(err, errcode.EACCES, errcode.EPERM) {
			return nil, nil
		}
		// The directory vanished between listing its parent and reading it.
		if errcode.Is(err, errcode.ENOENT) {
			return nil, nil
		}
		return nil, err
	}
	return infos, nil
}

func lstat(fsys afero.Fs, name string) (os.FileInfo, error) {
	if l, ok := fsys.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fsys.Stat(name)
}
