package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPConfig holds the connection settings for a network-share backend.
type SFTPConfig struct {
	Host      string
	Port      string
	User      string
	Password  string
	RemoteDir string
	Timeout   time.Duration
}

// SFTPBackend writes photo bytes to a remote host over SFTP. A session is
// opened per operation and closed when the operation finishes. The locator
// is the remote path. When configured as primary, a failed write fails the
// whole upload; there is no further fallback.
type SFTPBackend struct {
	cfg SFTPConfig
}

func NewSFTPBackend(cfg SFTPConfig) (*SFTPBackend, error) {
	if cfg.Host == "" || cfg.User == "" {
		return nil, fmt.Errorf("sftp backend requires host and user")
	}
	if cfg.Port == "" {
		cfg.Port = "22"
	}
	if cfg.RemoteDir == "" {
		cfg.RemoteDir = "uploads"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SFTPBackend{cfg: cfg}, nil
}

// connect dials a fresh SSH connection and opens an SFTP session on it.
func (b *SFTPBackend) connect(ctx context.Context) (*ssh.Client, *sftp.Client, error) {
	timeout := b.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	sshCfg := &ssh.ClientConfig{
		User:            b.cfg.User,
		Auth:            []ssh.AuthMethod{ssh.Password(b.cfg.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         timeout,
	}

	conn, err := ssh.Dial("tcp", b.cfg.Host+":"+b.cfg.Port, sshCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial sftp host: %w", err)
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open sftp session: %w", err)
	}

	return conn, client, nil
}

func (b *SFTPBackend) Store(ctx context.Context, name string, data []byte) (string, error) {
	conn, client, err := b.connect(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	defer client.Close()

	// MkdirAll is idempotent; the directory may already exist.
	if err := client.MkdirAll(b.cfg.RemoteDir); err != nil {
		return "", fmt.Errorf("failed to create remote directory %s: %w", b.cfg.RemoteDir, err)
	}

	remotePath := path.Join(b.cfg.RemoteDir, name+".jpg")
	f, err := client.Create(remotePath)
	if err != nil {
		return "", fmt.Errorf("failed to create remote file %s: %w", remotePath, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write remote file %s: %w", remotePath, err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close remote file %s: %w", remotePath, err)
	}

	return remotePath, nil
}

func (b *SFTPBackend) Retrieve(ctx context.Context, locator string) ([]byte, error) {
	conn, client, err := b.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	defer client.Close()

	f, err := client.Open(locator)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open remote file %s: %w", locator, err)
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote file %s: %w", locator, err)
	}

	return buf, nil
}

func (b *SFTPBackend) Remove(ctx context.Context, locator string) error {
	conn, client, err := b.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	defer client.Close()

	if err := client.Remove(locator); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove remote file %s: %w", locator, err)
	}
	return nil
}

func (b *SFTPBackend) Name() string { return "sftp" }
