// internal/ssh/fetch.go
package ssh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	scp "github.com/bramvdbogaerde/go-scp"
	"go.uber.org/zap"

	apperror "remotail/internal/error"
	"remotail/internal/models"
	"remotail/internal/utils"
)

// Fetch downloads the current content of target's remote file into localPath
// over SCP and returns the number of bytes written. It uses its own connection
// so a running follow session is not disturbed.
func (c *Client) Fetch(ctx context.Context, target models.Target, localPath string) (int64, error) {
	localPath = utils.ExpandHome(localPath)
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}

	client, err := c.dial(ctx, target)
	if err != nil {
		return 0, err
	}
	defer client.Close()

	scpClient, err := scp.NewClientBySSH(client)
	if err != nil {
		return 0, apperror.New(apperror.ConnectionError, "failed to create scp session", err)
	}
	defer scpClient.Close()

	file, err := os.Create(localPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	defer file.Close()

	if err := scpClient.CopyFromRemote(ctx, file, target.RemotePath); err != nil {
		return 0, fmt.Errorf("scp %s: %w", target.RemotePath, err)
	}

	info, err := file.Stat()
	if err != nil {
		return 0, err
	}
	c.log.Info("fetched remote file",
		zap.String("alias", target.Alias),
		zap.String("remote", target.RemotePath),
		zap.String("local", localPath),
		zap.Int64("bytes", info.Size()))
	return info.Size(), nil
}
