package transfer

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"

	"github.com/jlaffaye/ftp"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// FTPUploadFile uploads a local file to a plain FTP site, returning the
// remote path. An empty username logs in anonymously.
func FTPUploadFile(ctx context.Context, cfg config.FTPConfig, sourcePath, destinationPath string) (string, error) {
	address := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	connection, err := ftp.Dial(address, ftp.DialWithContext(ctx))
	if err != nil {
		return "", errors.Wrapf(err, "dial ftp site %q", address)
	}
	defer connection.Quit()

	username, password := cfg.Username, cfg.Password
	if username == "" {
		username, password = "anonymous", "anonymous"
	}
	if err := connection.Login(username, password); err != nil {
		return "", errors.Wrapf(err, "log in to ftp site %q", address)
	}

	if parent := path.Dir(destinationPath); parent != "." && parent != "/" {
		if err := connection.ChangeDir(parent); err != nil {
			return "", errors.Wrapf(err, "change to remote folder %q", parent)
		}
	}

	source, err := os.Open(sourcePath)
	if err != nil {
		return "", errors.Wrapf(err, "open %q", sourcePath)
	}
	defer source.Close()

	if err := connection.Stor(path.Base(destinationPath), source); err != nil {
		return "", errors.Wrapf(err, "upload %q to %q", sourcePath, destinationPath)
	}

	logger.Logger.Infow("Uploaded file to FTP site",
		"source", sourcePath, "host", cfg.Host, "path", destinationPath)
	return destinationPath, nil
}
