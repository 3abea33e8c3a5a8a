package contracts

// ArchiveExtractor unpacks a compressed bundle in place, next to the
// archive file itself.
type ArchiveExtractor interface {
	Extract(archivePath string) error
}

// ArchiveWriter packs a directory's contents into a single compressed file
// written beside the directory. It returns the path of the written file.
type ArchiveWriter interface {
	Archive(sourceDir, outputName, format string) (string, error)
}
