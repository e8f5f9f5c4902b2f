package fsextender

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/n3okill/fs-extender-sub001/internal/walk"
)

const compareChunk = 64 * 1024

// CompareByBytes reports whether a and b have identical content. Directories are
// equal when they hold the same relative paths of the same kinds and every pair
// of files is equal.
func (f *FS) CompareByBytes(a, b string) (bool, error) {
	return f.compare(a, b, f.sameBytes)
}

// CompareByHash is CompareByBytes with file content compared by xxhash64 digest.
func (f *FS) CompareByHash(a, b string) (bool, error) {
	return f.compare(a, b, f.sameHash)
}

// CompareByBytesAsync is the asynchronous form of CompareByBytes.
func (f *FS) CompareByBytesAsync(ctx context.Context, a, b string) *Future[bool] {
	return goAsync(ctx, func(context.Context) (bool, error) {
		return f.CompareByBytes(a, b)
	})
}

// CompareByHashAsync is the asynchronous form of CompareByHash.
func (f *FS) CompareByHashAsync(ctx context.Context, a, b string) *Future[bool] {
	return goAsync(ctx, func(context.Context) (bool, error) {
		return f.CompareByHash(a, b)
	})
}

type fileEqualFunc func(a, b string, ai, bi os.FileInfo) (bool, error)

func (f *FS) compare(a, b string, same fileEqualFunc) (bool, error) {
	ai, err := f.lstat(a)
	if err != nil {
		return false, err
	}
	bi, err := f.lstat(b)
	if err != nil {
		return false, err
	}
	if ai.Mode().Type() != bi.Mode().Type() {
		return false, nil
	}
	if !ai.IsDir() {
		return f.sameEntry(a, b, ai, bi, same)
	}

	aEntries, err := f.relativeTree(a)
	if err != nil {
		return false, err
	}
	bEntries, err := f.relativeTree(b)
	if err != nil {
		return false, err
	}
	if len(aEntries) != len(bEntries) {
		return false, nil
	}
	for rel, ae := range aEntries {
		be, ok := bEntries[rel]
		if !ok || ae.Mode().Type() != be.Mode().Type() {
			return false, nil
		}
		if ae.IsDir() {
			continue
		}
		eq, err := f.sameEntry(filepath.Join(a, rel), filepath.Join(b, rel), ae, be, same)
		if err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

func (f *FS) sameEntry(a, b string, ai, bi os.FileInfo, same fileEqualFunc) (bool, error) {
	if ai.Mode()&os.ModeSymlink != 0 {
		at, err := f.Readlink(a)
		if err != nil {
			return false, err
		}
		bt, err := f.Readlink(b)
		if err != nil {
			return false, err
		}
		return at == bt, nil
	}
	if !ai.Mode().IsRegular() {
		return true, nil
	}
	if ai.Size() != bi.Size() {
		return false, nil
	}
	return same(a, b, ai, bi)
}

func (f *FS) relativeTree(root string) (map[string]os.FileInfo, error) {
	entries := make(map[string]os.FileInfo)
	err := walk.Walk(f, root, walk.DefaultOptions(), func(e walk.Entry) error {
		rel, err := filepath.Rel(root, e.Path)
		if err != nil {
			return err
		}
		entries[rel] = e.Info
		return nil
	})
	return entries, err
}

func (f *FS) sameBytes(a, b string, _, _ os.FileInfo) (bool, error) {
	fa, err := f.openFile(a, os.O_RDONLY, 0)
	if err != nil {
		return false, err
	}
	defer fa.Close()
	fb, err := f.openFile(b, os.O_RDONLY, 0)
	if err != nil {
		return false, err
	}
	defer fb.Close()

	bufA := make([]byte, compareChunk)
	bufB := make([]byte, compareChunk)
	for {
		na, errA := io.ReadFull(fa, bufA)
		nb, errB := io.ReadFull(fb, bufB)
		if !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}
		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !doneA {
			return false, errA
		}
		if errB != nil && !doneB {
			return false, errB
		}
		if doneA || doneB {
			return doneA == doneB, nil
		}
	}
}

func (f *FS) sameHash(a, b string, _, _ os.FileInfo) (bool, error) {
	ha, err := f.hashFile(a)
	if err != nil {
		return false, err
	}
	hb, err := f.hashFile(b)
	if err != nil {
		return false, err
	}
	return ha == hb, nil
}

func (f *FS) hashFile(name string) (uint64, error) {
	file, err := f.openFile(name, os.O_RDONLY, 0)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	h := xxhash.New()
	if _, err := io.CopyBuffer(h, file, make([]byte, f.copyBufferSize)); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
