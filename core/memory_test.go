package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type inMemoryFileSystem struct {
	fileSystem map[string]*file

	errWriteFile map[string]error
	errReadDir   map[string]error
}

func newInMemoryFileSystem() *inMemoryFileSystem {
	return &inMemoryFileSystem{
		fileSystem:   make(map[string]*file),
		errWriteFile: make(map[string]error),
		errReadDir:   make(map[string]error),
	}
}

func (this *inMemoryFileSystem) Stat(path string) (contracts.FileInfo, error) {
	entry, found := this.fileSystem[path]
	if !found {
		return nil, os.ErrNotExist
	}
	return entry, nil
}

func (this *inMemoryFileSystem) ReadDir(path string) (listing []contracts.FileInfo, err error) {
	if err, found := this.errReadDir[path]; found {
		return nil, err
	}
	directory, found := this.fileSystem[path]
	if !found || !directory.isDir {
		return nil, os.ErrNotExist
	}
	for candidate, entry := range this.fileSystem {
		if filepath.Dir(candidate) == path {
			listing = append(listing, entry)
		}
	}
	sort.Slice(listing, func(i, j int) bool { return listing[i].Path() < listing[j].Path() })
	return listing, nil
}

func (this *inMemoryFileSystem) ReadFile(path string) ([]byte, error) {
	entry, found := this.fileSystem[path]
	if !found {
		return nil, os.ErrNotExist
	}
	if entry.isDir {
		return nil, fmt.Errorf("is a directory: %s", path)
	}
	return entry.contents, nil
}

func (this *inMemoryFileSystem) WriteFile(path string, content []byte) error {
	if err, found := this.errWriteFile[path]; found {
		return err
	}
	err := this.MkdirAll(filepath.Dir(path))
	if err != nil {
		return err
	}
	this.fileSystem[path] = &file{path: path, contents: content, mod: InMemoryModTime, mode: 0644}
	return nil
}

func (this *inMemoryFileSystem) MkdirAll(path string) error {
	for current := path; current != "." && current != "/" && current != ""; current = filepath.Dir(current) {
		entry, found := this.fileSystem[current]
		if found && !entry.isDir {
			return fmt.Errorf("not a directory: %s", current)
		}
		if !found {
			this.fileSystem[current] = &file{path: current, isDir: true, mod: InMemoryModTime, mode: os.ModeDir | 0755}
		}
	}
	return nil
}

func (this *inMemoryFileSystem) Rename(source, target string) error {
	entry, found := this.fileSystem[source]
	if !found {
		return os.ErrNotExist
	}
	err := this.MkdirAll(filepath.Dir(target))
	if err != nil {
		return err
	}
	if entry.isDir {
		prefix := source + string(os.PathSeparator)
		for _, path := range this.pathsWithPrefix(prefix) {
			child := this.fileSystem[path]
			delete(this.fileSystem, path)
			child.path = filepath.Join(target, strings.TrimPrefix(path, prefix))
			this.fileSystem[child.path] = child
		}
	}
	delete(this.fileSystem, source)
	entry.path = target
	this.fileSystem[target] = entry
	return nil
}

func (this *inMemoryFileSystem) Delete(path string) error {
	if _, found := this.fileSystem[path]; !found {
		return os.ErrNotExist
	}
	delete(this.fileSystem, path)
	return nil
}

func (this *inMemoryFileSystem) RemoveAll(path string) error {
	delete(this.fileSystem, path)
	for _, child := range this.pathsWithPrefix(path + string(os.PathSeparator)) {
		delete(this.fileSystem, child)
	}
	return nil
}

func (this *inMemoryFileSystem) CreateSymlink(source, target string) error {
	if _, found := this.fileSystem[target]; found {
		return os.ErrExist
	}
	if _, found := this.fileSystem[filepath.Dir(target)]; !found {
		return os.ErrNotExist
	}
	this.fileSystem[target] = &file{path: target, symlink: source, mod: InMemoryModTime, mode: os.ModeSymlink | 0777}
	return nil
}

func (this *inMemoryFileSystem) ReadSymlink(path string) (string, error) {
	entry, found := this.fileSystem[path]
	if !found {
		return "", os.ErrNotExist
	}
	if entry.symlink == "" {
		return "", fmt.Errorf("not a symlink: %s", path)
	}
	return entry.symlink, nil
}

func (this *inMemoryFileSystem) pathsWithPrefix(prefix string) (paths []string) {
	for candidate := range this.fileSystem {
		if strings.HasPrefix(candidate, prefix) {
			paths = append(paths, candidate)
		}
	}
	return paths
}

func (this *inMemoryFileSystem) exists(path string) bool {
	_, found := this.fileSystem[path]
	return found
}

func (this *inMemoryFileSystem) namesIn(directory string) (names []string) {
	for candidate := range this.fileSystem {
		if filepath.Dir(candidate) == directory {
			names = append(names, filepath.Base(candidate))
		}
	}
	sort.Strings(names)
	return names
}

/////////////////////////////////////////////////

type file struct {
	path     string
	contents []byte
	mod      time.Time
	mode     os.FileMode
	isDir    bool
	symlink  string
}

var InMemoryModTime = time.Now()

func (this *file) Path() string       { return this.path }
func (this *file) Size() int64        { return int64(len(this.contents)) }
func (this *file) ModTime() time.Time { return this.mod }
func (this *file) Mode() os.FileMode  { return this.mode }
func (this *file) IsDir() bool        { return this.isDir }
func (this *file) Symlink() string    { return this.symlink }
