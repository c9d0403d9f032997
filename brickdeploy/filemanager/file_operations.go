package filemanager

import (
	"io"
	"os"

	"github.com/steelcutops/brickdeploy/logger"
)

// FileOperations represents operations that can be performed on remote files.
type FileOperations interface {
	Upload(localPath, remotePath string, mode os.FileMode) error
}

type SFTPFileManager struct {
	Client SFTPClient
	Logger logger.Logger
}

func NewSFTPFileManager(client SFTPClient, log logger.Logger) *SFTPFileManager {
	return &SFTPFileManager{Client: client, Logger: log}
}

// Upload copies a local file over any existing remote file and then applies mode.
func (f *SFTPFileManager) Upload(localPath, remotePath string, mode os.FileMode) error {
	f.Logger.Info("Uploading file", "local", localPath, "remote", remotePath, "mode", mode)

	src, err := os.Open(localPath)
	if err != nil {
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}
	defer src.Close()

	dst, err := f.Client.Create(remotePath)
	if err != nil {
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}
	if err := dst.Close(); err != nil {
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}
	if err := f.Client.Chmod(remotePath, mode); err != nil {
		return &TransferError{Local: localPath, Remote: remotePath, Err: err}
	}
	return nil
}
