package contracts

import (
	"os"
	"time"
)

type FileChecker interface {
	Stat(path string) (FileInfo, error)
}

type DirectoryLister interface {
	ReadDir(path string) ([]FileInfo, error)
}

type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

type FileWriter interface {
	WriteFile(path string, content []byte) error
}

type Renamer interface {
	Rename(source, target string) error
}

type Deleter interface {
	Delete(path string) error
	RemoveAll(path string) error
}

type DirectoryCreator interface {
	MkdirAll(path string) error
}

type SymlinkCreator interface {
	CreateSymlink(source, target string) error
	ReadSymlink(path string) (string, error)
}

type FileSystem interface {
	FileChecker
	DirectoryLister
	FileReader
	FileWriter
	Renamer
	Deleter
	DirectoryCreator
	SymlinkCreator
}

// FileInfo reports on a single path. Stat implementations must not follow
// symlinks; a pointer entry reports Symlink() and not IsDir().
type FileInfo interface {
	Path() string
	Size() int64
	ModTime() time.Time
	Mode() os.FileMode
	IsDir() bool
	Symlink() string
}

type Environment interface {
	LookupEnv(key string) (value string, set bool)
}
