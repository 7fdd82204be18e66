// Package wake sends a Wake-on-LAN packet to the backup destination host
// before a scheduled run.
package wake

import (
	"context"
	"fmt"
	"net"

	"github.com/kmattheis/snapsched/internal/models"
	"github.com/mdlayher/wol"
	"github.com/rs/zerolog"
)

// Service defines the interface for waking the destination host.
type Service interface {
	Wake(ctx context.Context, cfg models.WakeConfig) error
}

// Client wraps the wol library for mocking.
type Client interface {
	Wake(broadcastIP string, mac net.HardwareAddr) error
}

// DefaultClient is the default implementation using mdlayher/wol.
type DefaultClient struct{}

// Wake sends a magic packet to the specified MAC address.
func (c *DefaultClient) Wake(broadcastIP string, mac net.HardwareAddr) error {
	client, err := wol.NewClient()
	if err != nil {
		return fmt.Errorf("creating WOL client: %w", err)
	}
	defer func() { _ = client.Close() }()

	ip := net.ParseIP(broadcastIP)
	if ip == nil {
		return fmt.Errorf("invalid broadcast IP: %s", broadcastIP)
	}

	if err := client.Wake(ip.String()+":9", mac); err != nil {
		return fmt.Errorf("sending WOL packet: %w", err)
	}
	return nil
}

// Impl implements the wake Service interface.
type Impl struct {
	client Client
	logger zerolog.Logger
}

// New creates a wake service.
func New(logger zerolog.Logger) *Impl {
	return &Impl{client: &DefaultClient{}, logger: logger}
}

// NewWithClient creates a wake service with a custom client (for testing).
func NewWithClient(logger zerolog.Logger, client Client) *Impl {
	return &Impl{client: client, logger: logger}
}

// Wake sends the magic packet to the configured destination host.
func (s *Impl) Wake(ctx context.Context, cfg models.WakeConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mac, err := net.ParseMAC(cfg.MACAddress)
	if err != nil {
		return fmt.Errorf("invalid MAC address %q: %w", cfg.MACAddress, err)
	}

	s.logger.Info().
		Str("mac", cfg.MACAddress).
		Str("broadcast", cfg.BroadcastIP).
		Msg("waking backup destination")

	return s.client.Wake(cfg.BroadcastIP, mac)
}
