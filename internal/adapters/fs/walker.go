// Package fs walks package payload directories.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// File is a regular file found by a walk.
type File struct {
	Path string
	Info fs.FileInfo
}

// Walker yields the regular files below a directory.
type Walker struct {
	ignores []string
}

// NewWalker creates a Walker. Names matching one of the ignore patterns are skipped.
func NewWalker(ignores ...string) *Walker {
	return &Walker{ignores: ignores}
}

// WalkFiles yields every regular file below root in lexical order, skipping
// version control directories and ignored names. Symlinks and other special
// files are not yielded. A walk error is yielded once and ends the walk.
func (w *Walker) WalkFiles(root string) iter.Seq2[File, error] {
	return func(yield func(File, error) bool) {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if path != root {
				if skip := w.shouldSkip(d); skip != nil || w.ignored(d) {
					return skip
				}
			}

			if !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return err
			}
			if !yield(File{Path: path, Info: info}, nil) {
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil {
			yield(File{}, err)
		}
	}
}

// shouldSkip returns filepath.SkipDir for directories that are never part of a payload.
func (w *Walker) shouldSkip(d fs.DirEntry) error {
	if !d.IsDir() {
		return nil
	}
	switch d.Name() {
	case ".git", ".jj", ".hg":
		return filepath.SkipDir
	}
	if w.ignored(d) {
		return filepath.SkipDir
	}
	return nil
}

func (w *Walker) ignored(d fs.DirEntry) bool {
	for _, ignore := range w.ignores {
		if matched, _ := filepath.Match(ignore, d.Name()); matched {
			return true
		}
	}
	return false
}
