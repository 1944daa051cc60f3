package transfer

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/cartops/proctools/config"
	"github.com/cartops/proctools/errors"
	"github.com/cartops/proctools/logger"
)

// SFTPUploadFile uploads a local file to an SFTP site, returning the remote
// path. Authentication uses the configured password, private key file, or
// both. Host keys are not verified; upload targets are inside trusted
// networks.
func SFTPUploadFile(ctx context.Context, cfg config.SFTPConfig, sourcePath, destinationPath string) (string, error) {
	authMethods, err := sftpAuthMethods(cfg)
	if err != nil {
		return "", err
	}

	address := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	dialer := net.Dialer{}
	connection, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return "", errors.Wrapf(err, "dial sftp site %q", address)
	}

	sshConnection, channels, requests, err := ssh.NewClientConn(connection, address, &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            authMethods,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		connection.Close()
		return "", errors.Wrapf(err, "open ssh connection to %q", address)
	}
	sshClient := ssh.NewClient(sshConnection, channels, requests)
	defer sshClient.Close()

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		return "", errors.Wrap(err, "open sftp subsystem")
	}
	defer client.Close()

	source, err := os.Open(sourcePath)
	if err != nil {
		return "", errors.Wrapf(err, "open %q", sourcePath)
	}
	defer source.Close()

	if parent := path.Dir(destinationPath); parent != "." && parent != "/" {
		if err := client.MkdirAll(parent); err != nil {
			return "", errors.Wrapf(err, "create remote folder %q", parent)
		}
	}
	destination, err := client.Create(destinationPath)
	if err != nil {
		return "", errors.Wrapf(err, "create remote file %q", destinationPath)
	}
	defer destination.Close()

	size, err := io.Copy(destination, source)
	if err != nil {
		return "", errors.Wrapf(err, "upload %q to %q", sourcePath, destinationPath)
	}

	// Keep remote mtime aligned with the source for replica comparisons.
	if info, err := os.Stat(sourcePath); err == nil {
		_ = client.Chtimes(destinationPath, info.ModTime(), info.ModTime())
	}

	logger.Logger.Infow("Uploaded file to SFTP site",
		"source", sourcePath, "host", cfg.Host, "path", destinationPath, "size", size)
	return destinationPath, nil
}

func sftpAuthMethods(cfg config.SFTPConfig) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod
	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}
	if cfg.PrivateKeyPath != "" {
		keyBytes, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, errors.Wrapf(err, "read private key %q", cfg.PrivateKeyPath)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, errors.Wrapf(err, "parse private key %q", cfg.PrivateKeyPath)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}
	if len(methods) == 0 {
		return nil, errors.New("sftp credential not configured")
	}
	return methods, nil
}
