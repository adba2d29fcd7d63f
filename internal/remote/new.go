package remote

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/sdr-tools/dispatchflow/internal/config"
	"github.com/sdr-tools/dispatchflow/internal/logger"
)

type implClient struct {
	ssh       *ssh.Client
	sftp      *sftp.Client
	remoteDir string
	logger    logger.Logger
}

// Dial opens the SSH connection and SFTP subsystem to the capture host
// using key-based authentication. The dial is bounded by the configured
// connect timeout.
func Dial(cfg config.RemoteConfig, log logger.Logger) (Client, error) {
	keyBytes, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, &ConnectionError{Host: cfg.Host, Err: fmt.Errorf("read key %s: %w", cfg.KeyPath, err)}
	}

	signer, err := ssh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, &ConnectionError{Host: cfg.Host, Err: fmt.Errorf("parse key: %w", err)}
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         time.Duration(cfg.ConnectTimeout) * time.Second,
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	conn, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, &ConnectionError{Host: cfg.Host, Err: err}
	}

	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return nil, &ConnectionError{Host: cfg.Host, Err: fmt.Errorf("open sftp subsystem: %w", err)}
	}

	return &implClient{
		ssh:       conn,
		sftp:      client,
		remoteDir: cfg.Dir,
		logger:    log,
	}, nil
}
