package classpath

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound means a locator does not hold the requested resource
var ErrNotFound = errors.New("resource not found")

// Locator opens class-file resources (a/b/C.class) from one class-path entry
type Locator interface {
	Open(resource string) (io.ReadCloser, error)
	String() string
}

// FSLocator serves resources from any fs.FS. Directories use os.DirFS, which
// also rejects paths escaping the root.
type FSLocator struct {
	fsys fs.FS
	name string
}

func NewFSLocator(fsys fs.FS, name string) *FSLocator {
	return &FSLocator{fsys: fsys, name: name}
}

// Dir creates a locator for a class-file directory tree
func Dir(root string) *FSLocator {
	return NewFSLocator(os.DirFS(root), root)
}

func (l *FSLocator) Open(resource string) (io.ReadCloser, error) {
	f, err := l.fsys.Open(resource)
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("unable to open %s in %s: %w", resource, l.name, err)
	}
	return f, nil
}

func (l *FSLocator) String() string {
	return l.name
}

// JarLocator serves resources from a jar or zip archive
type JarLocator struct {
	path    string
	archive *zip.ReadCloser
	entries map[string]*zip.File
}

// OpenJar opens and indexes an archive. Close releases the file handle.
func OpenJar(path string) (*JarLocator, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open archive: %w", err)
	}

	entries := make(map[string]*zip.File, len(archive.File))
	for _, f := range archive.File {
		if !f.FileInfo().IsDir() {
			entries[f.Name] = f
		}
	}

	return &JarLocator{path: path, archive: archive, entries: entries}, nil
}

func (l *JarLocator) Open(resource string) (io.ReadCloser, error) {
	entry, ok := l.entries[resource]
	if !ok {
		return nil, ErrNotFound
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("unable to open %s in %s: %w", resource, l.path, err)
	}
	return rc, nil
}

func (l *JarLocator) Close() error {
	return l.archive.Close()
}

func (l *JarLocator) String() string {
	return l.path
}

// MemoryLocator holds class bytes defined at runtime, the way an agent
// injects helper classes into a loader
type MemoryLocator struct {
	mu      sync.RWMutex
	name    string
	classes map[string][]byte
}

func NewMemoryLocator(name string) *MemoryLocator {
	return &MemoryLocator{name: name, classes: make(map[string][]byte)}
}

// Define stores the bytes of a class under its resource name
func (l *MemoryLocator) Define(resource string, data []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.classes[resource] = data
}

func (l *MemoryLocator) Open(resource string) (io.ReadCloser, error) {
	l.mu.RLock()
	data, ok := l.classes[resource]
	l.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (l *MemoryLocator) String() string {
	return l.name
}

// ParseClasspath opens every entry of an OS path-list: directories and
// .jar/.zip archives. Already opened archives are closed on failure.
func ParseClasspath(classpath string) ([]Locator, error) {
	var locators []Locator

	fail := func(err error) ([]Locator, error) {
		closeLocators(locators)
		return nil, err
	}

	for _, entry := range filepath.SplitList(classpath) {
		if entry == "" {
			continue
		}

		info, err := os.Stat(entry)
		if err != nil {
			return fail(fmt.Errorf("invalid class-path entry %s: %w", entry, err))
		}

		if info.IsDir() {
			locators = append(locators, Dir(entry))
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry))
		if ext != ".jar" && ext != ".zip" {
			return fail(fmt.Errorf("invalid class-path entry %s: expected a directory, .jar or .zip", entry))
		}

		jar, err := OpenJar(entry)
		if err != nil {
			return fail(fmt.Errorf("invalid class-path entry %s: %w", entry, err))
		}
		locators = append(locators, jar)
	}

	return locators, nil
}

func closeLocators(locators []Locator) error {
	var errs []error
	for _, l := range locators {
		if c, ok := l.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
