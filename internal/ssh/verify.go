// internal/ssh/verify.go
package ssh

import (
	"errors"
	"fmt"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// errNoSFTP marks a server without the sftp subsystem; the check is skipped then.
var errNoSFTP = errors.New("sftp subsystem unavailable")

// verifyRemotePath checks over SFTP that remotePath exists and is not a
// directory, so a typo surfaces as a connection failure instead of a silent
// tail error.
func verifyRemotePath(client *ssh.Client, remotePath string) error {
	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return fmt.Errorf("%w: %v", errNoSFTP, err)
	}
	defer sftpClient.Close()

	info, err := sftpClient.Stat(remotePath)
	if err != nil {
		return fmt.Errorf("stat %s: %w", remotePath, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", remotePath)
	}
	return nil
}
