package fsextender

import (
	"context"

	"github.com/n3okill/fs-extender-sub001/internal/walk"
)

// Traversal orders for List.
const (
	DepthFirst   = walk.DepthFirst
	BreadthFirst = walk.BreadthFirst
)

// UnlimitedDepth lists a tree without a depth limit.
const UnlimitedDepth = walk.Unlimited

// ListOptions configures List. The zero value lists the whole tree depth-first.
type ListOptions struct {
	// Depth is the deepest level listed; the children of the root are at depth 1.
	// Zero or UnlimitedDepth means no limit.
	Depth int
	Order walk.Order
	// IgnoreAccessErrors skips unreadable directories instead of failing.
	IgnoreAccessErrors bool
}

// ListEntry is one entry found by List.
type ListEntry = walk.Entry

// List returns every entry below name. Symlinks are listed but not followed.
func (f *FS) List(name string, opts ListOptions) ([]ListEntry, error) {
	depth := opts.Depth
	if depth == 0 {
		depth = walk.Unlimited
	}
	return walk.List(f, name, walk.Options{
		Depth:              depth,
		Order:              opts.Order,
		IgnoreAccessErrors: opts.IgnoreAccessErrors,
	})
}

// Size returns the total size of the regular files at or below name.
func (f *FS) Size(name string) (int64, error) {
	info, err := f.lstat(name)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			return info.Size(), nil
		}
		return 0, nil
	}

	var total int64
	err = walk.Walk(f, name, walk.DefaultOptions(), func(e walk.Entry) error {
		if e.Info.Mode().IsRegular() {
			total += e.Info.Size()
		}
		return nil
	})
	return total, err
}

// ListAsync is the asynchronous form of List.
func (f *FS) ListAsync(ctx context.Context, name string, opts ListOptions) *Future[[]ListEntry] {
	return goAsync(ctx, func(context.Context) ([]ListEntry, error) {
		return f.List(name, opts)
	})
}

// SizeAsync is the asynchronous form of Size.
func (f *FS) SizeAsync(ctx context.Context, name string) *Future[int64] {
	return goAsync(ctx, func(context.Context) (int64, error) {
		return f.Size(name)
	})
}
