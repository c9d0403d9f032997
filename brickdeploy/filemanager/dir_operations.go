package filemanager

// DirOperations represents operations that can be performed on remote directories.
type DirOperations interface {
	CreateDirectory(path string) error
}

// CreateDirectory creates a single directory. Existing directories are
// reported as errors by the server; callers that do not care discard them.
func (f *SFTPFileManager) CreateDirectory(path string) error {
	f.Logger.Debug("Creating directory", "path", path)
	return f.Client.Mkdir(path)
}
