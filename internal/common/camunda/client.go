// internal/common/camunda/client.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"campus-assistant-workers/internal/common/config"
)

// Client wraps the Zeebe gRPC client. Construction verifies the broker is
// actually reachable, so retry loops around NewClient retry the whole
// connect-and-probe sequence rather than just the lazy gRPC dial.
type Client struct {
	client            zbc.Client
	connectionTimeout time.Duration
}

// NewClient creates a Zeebe client from the camunda section of the app
// config and probes the broker topology once before returning.
func NewClient(cfg config.CamundaConfig) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true, // Set to false and configure TLS in production
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	connectionTimeout := config.GetDuration(cfg.RequestTimeout)
	if connectionTimeout <= 0 {
		connectionTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if _, err := zeebeClient.NewTopologyCommand().Send(ctx); err != nil {
		zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}

	return &Client{
		client:            zeebeClient,
		connectionTimeout: connectionTimeout,
	}, nil
}

// GetClient returns the raw Zeebe client for job worker registration.
func (c *Client) GetClient() zbc.Client {
	return c.client
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// HealthCheck performs a basic health check against the Zeebe broker.
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.connectionTimeout)
	defer cancel()

	_, err := c.client.NewTopologyCommand().Send(ctx)
	if err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}
