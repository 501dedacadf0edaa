// Package platform holds the collaborators the resource core reaches outside of itself
// for: reading asset files and compiling shader source.
package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

var errInvalidPath = errors.New("invalid asset path")

// FileSystem is the file access boundary used by every loader in the resource core.
// Paths are slash-separated and relative to the file system's root.
type FileSystem interface {
	// LoadText reads a whole file as UTF-8 text.
	//
	// Parameters:
	//   - name: the slash-separated path of the file
	//
	// Returns:
	//   - string: the file contents
	//   - error: error if the file cannot be read
	LoadText(name string) (string, error)

	// LoadBytes reads a whole file as raw bytes.
	//
	// Parameters:
	//   - name: the slash-separated path of the file
	//
	// Returns:
	//   - []byte: the file contents
	//   - error: error if the file cannot be read
	LoadBytes(name string) ([]byte, error)

	// Exists reports whether a regular file exists at name. It never fails; any
	// error while probing is reported as absent.
	//
	// Parameters:
	//   - name: the slash-separated path of the file
	//
	// Returns:
	//   - bool: true if the file exists
	Exists(name string) bool
}

// fsFileSystem adapts an io/fs.FS to the FileSystem interface.
type fsFileSystem struct {
	fsys fs.FS
}

var _ FileSystem = &fsFileSystem{}

// NewFileSystem wraps any io/fs.FS, such as an embed.FS or testing/fstest.MapFS.
//
// Parameters:
//   - fsys: the file system to read from
//
// Returns:
//   - FileSystem: the wrapped file system
func NewFileSystem(fsys fs.FS) FileSystem {
	return &fsFileSystem{fsys: fsys}
}

// NewDirFileSystem returns a FileSystem rooted at the given OS directory.
//
// Parameters:
//   - root: the asset root directory
//
// Returns:
//   - FileSystem: the file system rooted at root
func NewDirFileSystem(root string) FileSystem {
	return NewFileSystem(os.DirFS(root))
}

func (f *fsFileSystem) LoadText(name string) (string, error) {
	data, err := f.LoadBytes(name)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (f *fsFileSystem) LoadBytes(name string) ([]byte, error) {
	clean, err := CleanPath(name)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(f.fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	return data, nil
}

func (f *fsFileSystem) Exists(name string) bool {
	clean, err := CleanPath(name)
	if err != nil {
		return false
	}
	info, err := fs.Stat(f.fsys, clean)
	return err == nil && info.Mode().IsRegular()
}

// CleanPath normalizes a slash-separated asset path into the form io/fs expects.
// Leading "./" and "/" are dropped; paths escaping the root are rejected.
//
// Parameters:
//   - name: the path to normalize
//
// Returns:
//   - string: the cleaned path
//   - error: error if the path escapes the root
func CleanPath(name string) (string, error) {
	clean := path.Clean(strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/"))
	if !fs.ValidPath(clean) {
		return "", fmt.Errorf("%w: %q", errInvalidPath, name)
	}
	return clean, nil
}

// JoinRelative resolves ref against the directory of base, the way relative URIs
// inside a descriptor resolve against the descriptor's own location.
//
// Parameters:
//   - base: the path of the referencing file
//   - ref: the relative reference
//
// Returns:
//   - string: the joined path
func JoinRelative(base, ref string) string {
	return path.Join(path.Dir(base), ref)
}
