// Package remote runs the retention prune on the backup destination host
// over SSH, in the background, after a successful scheduled run.
package remote

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/kmattheis/snapsched/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

// Service defines the interface for remote prune execution.
type Service interface {
	RunPrune(ctx context.Context, cfg models.RemoteConfig, command string) error
}

// SSHClient wraps ssh.Client for mocking.
type SSHClient interface {
	NewSession() (SSHSession, error)
	Close() error
}

// SSHSession wraps ssh.Session for mocking.
type SSHSession interface {
	CombinedOutput(cmd string) ([]byte, error)
	Close() error
}

// ClientFactory creates SSH clients.
type ClientFactory interface {
	NewClient(network, addr string, config *ssh.ClientConfig) (SSHClient, error)
}

// DefaultClientFactory is the default SSH client factory.
type DefaultClientFactory struct{}

// NewClient creates a new SSH client.
func (f *DefaultClientFactory) NewClient(network, addr string, config *ssh.ClientConfig) (SSHClient, error) {
	client, err := ssh.Dial(network, addr, config)
	if err != nil {
		return nil, err
	}
	return &defaultSSHClient{client: client}, nil
}

type defaultSSHClient struct {
	client *ssh.Client
}

func (c *defaultSSHClient) NewSession() (SSHSession, error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, err
	}
	return &defaultSSHSession{session: session}, nil
}

func (c *defaultSSHClient) Close() error {
	return c.client.Close()
}

type defaultSSHSession struct {
	session *ssh.Session
}

func (s *defaultSSHSession) CombinedOutput(cmd string) ([]byte, error) {
	return s.session.CombinedOutput(cmd)
}

func (s *defaultSSHSession) Close() error {
	return s.session.Close()
}

// Impl implements the remote Service interface.
type Impl struct {
	clientFactory ClientFactory
	logger        zerolog.Logger
}

// New creates a remote service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{clientFactory: &DefaultClientFactory{}, logger: logger}
}

// NewWithClientFactory creates a remote service with a custom client
// factory (for testing).
func NewWithClientFactory(logger zerolog.Logger, factory ClientFactory) *Impl {
	return &Impl{clientFactory: factory, logger: logger}
}

func (s *Impl) buildConfig(cfg models.RemoteConfig) (*ssh.ClientConfig, error) {
	if cfg.KeyPath == "" {
		return nil, fmt.Errorf("no private key configured")
	}

	key, err := os.ReadFile(cfg.KeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading private key %s: %w", cfg.KeyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parsing private key: %w", err)
	}

	return &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // trusted backup destination
		Timeout:         30 * time.Second,
	}, nil
}

// RunPrune executes the prune command on the remote host, detached with
// nohup so the session can return immediately.
func (s *Impl) RunPrune(ctx context.Context, cfg models.RemoteConfig, command string) error {
	if cfg.Host == "" {
		return fmt.Errorf("no remote host configured")
	}
	if cfg.MaxArgLength != 0 && len(command) > cfg.MaxArgLength {
		return fmt.Errorf("remote command length %d exceeds configured limit %d",
			len(command), cfg.MaxArgLength)
	}

	sshConfig, err := s.buildConfig(cfg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))

	s.logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("user", cfg.User).
		Msg("starting remote prune")

	clientChan := make(chan struct {
		client SSHClient
		err    error
	}, 1)

	go func() {
		client, err := s.clientFactory.NewClient("tcp", addr, sshConfig)
		clientChan <- struct {
			client SSHClient
			err    error
		}{client, err}
	}()

	var client SSHClient
	select {
	case <-ctx.Done():
		// The dial may still succeed after cancellation; close the
		// abandoned connection instead of leaking it.
		go func() {
			if res := <-clientChan; res.err == nil {
				_ = res.client.Close()
			}
		}()
		return ctx.Err()
	case res := <-clientChan:
		if res.err != nil {
			return fmt.Errorf("connecting to %s: %w", addr, res.err)
		}
		client = res.client
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	defer session.Close()

	detached := fmt.Sprintf("nohup %s >/dev/null 2>&1 &", command)
	if out, err := session.CombinedOutput(detached); err != nil {
		return fmt.Errorf("remote prune failed: %w (output: %s)", err, string(out))
	}

	s.logger.Debug().Msg("remote prune started")
	return nil
}
