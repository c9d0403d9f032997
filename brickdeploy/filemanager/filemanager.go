package filemanager

import (
	"fmt"
	"io"
	"os"

	"github.com/pkg/sftp"
)

// FileManager encompasses the remote file operations of a deployment.
type FileManager interface {
	FileOperations
	DirOperations
}

// SFTPClient is the part of *sftp.Client a deployment needs.
type SFTPClient interface {
	Mkdir(path string) error
	Create(path string) (io.WriteCloser, error)
	Chmod(path string, mode os.FileMode) error
}

type sftpClient struct {
	client *sftp.Client
}

// FromSFTP adapts an open SFTP client.
func FromSFTP(client *sftp.Client) SFTPClient {
	return &sftpClient{client: client}
}

func (s *sftpClient) Mkdir(path string) error {
	return s.client.Mkdir(path)
}

// Create opens path for writing, truncating any existing file.
func (s *sftpClient) Create(path string) (io.WriteCloser, error) {
	return s.client.Create(path)
}

func (s *sftpClient) Chmod(path string, mode os.FileMode) error {
	return s.client.Chmod(path, mode)
}

// Artifact is one local file and where it lands on the brick.
type Artifact struct {
	Local  string
	Remote string
	Mode   os.FileMode
}

// TransferError reports a failed upload.
type TransferError struct {
	Local  string
	Remote string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("failed to upload %s to %s: %v", e.Local, e.Remote, e.Err)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

// Deploy creates dirs and uploads artifacts in order. Directory creation is
// best effort; the first failed upload aborts.
func Deploy(fm FileManager, dirs []string, artifacts []Artifact) error {
	for _, dir := range dirs {
		_ = fm.CreateDirectory(dir)
	}
	for _, a := range artifacts {
		if err := fm.Upload(a.Local, a.Remote, a.Mode); err != nil {
			return err
		}
	}
	return nil
}
