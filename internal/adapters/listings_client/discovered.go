package listings_client

import (
	"context"

	"console-service/internal/core/domain"
	"console-service/internal/core/port"
)

// Discovered адаптирует Client к порту read-only коллекции найденных
// объявлений: у обоих портов метод называется List, поэтому нужен
// отдельный тип.
type Discovered struct {
	client *Client
}

func NewDiscovered(client *Client) Discovered {
	return Discovered{client: client}
}

func (d Discovered) List(ctx context.Context, phone string, query domain.Query) (*port.DiscoveredPage, error) {
	return d.client.ListDiscovered(ctx, phone, query)
}
