package shell

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"bitbucket.org/smartystreets/mirror/contracts"
)

type DiskFileSystem struct{}

func NewDiskFileSystem() *DiskFileSystem {
	return &DiskFileSystem{}
}

func (this *DiskFileSystem) Stat(path string) (contracts.FileInfo, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return nil, err
	}
	return this.describe(path, info)
}

func (this *DiskFileSystem) ReadDir(path string) (listing []contracts.FileInfo, err error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		fileInfo, err := this.describe(filepath.Join(path, entry.Name()), info)
		if err != nil {
			return nil, err
		}
		listing = append(listing, fileInfo)
	}
	return listing, nil
}

func (this *DiskFileSystem) describe(path string, info os.FileInfo) (contracts.FileInfo, error) {
	fileInfo := FileInfo{
		path:  path,
		size:  info.Size(),
		mod:   info.ModTime(),
		mode:  info.Mode(),
		isDir: info.IsDir(),
	}
	if info.Mode()&os.ModeSymlink == os.ModeSymlink {
		symlink, err := os.Readlink(path)
		if err != nil {
			return nil, err
		}
		fileInfo.symlink = symlink
	}
	return fileInfo, nil
}

func (this *DiskFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (this *DiskFileSystem) WriteFile(path string, content []byte) error {
	return os.WriteFile(path, content, 0644)
}

// Rename falls back to copy-and-delete for regular files when the rename
// crosses filesystems, which happens when scratch space lives outside the
// sync directory.
func (this *DiskFileSystem) Rename(source, target string) error {
	err := os.Rename(source, target)
	if err == nil {
		return nil
	}
	info, statErr := os.Lstat(source)
	if statErr != nil || !info.Mode().IsRegular() {
		return err
	}
	return this.moveFile(source, target, info.Mode())
}

func (this *DiskFileSystem) moveFile(source, target string, mode os.FileMode) error {
	reader, err := os.Open(source)
	if err != nil {
		return err
	}
	defer func() { _ = reader.Close() }()

	writer, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	_, err = io.Copy(writer, reader)
	closeErr := writer.Close()
	if err != nil {
		return err
	}
	if closeErr != nil {
		return closeErr
	}
	return os.Remove(source)
}

func (this *DiskFileSystem) Delete(path string) error {
	return os.Remove(path)
}

func (this *DiskFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

func (this *DiskFileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

func (this *DiskFileSystem) CreateSymlink(source, target string) error {
	return os.Symlink(source, target)
}

func (this *DiskFileSystem) ReadSymlink(path string) (string, error) {
	return os.Readlink(path)
}

////////////////////////////////////////

type FileInfo struct {
	path    string
	size    int64
	mod     time.Time
	mode    os.FileMode
	isDir   bool
	symlink string
}

func (this FileInfo) Path() string       { return this.path }
func (this FileInfo) Size() int64        { return this.size }
func (this FileInfo) ModTime() time.Time { return this.mod }
func (this FileInfo) Mode() os.FileMode  { return this.mode }
func (this FileInfo) IsDir() bool        { return this.isDir }
func (this FileInfo) Symlink() string    { return this.symlink }
