package application

import (
	"context"
	"encoding/json"

	"github.com/Apurer/go-sales-api-server/internal/domains/inventory/ports"
	"github.com/Apurer/go-sales-api-server/internal/shared/apperrors"
	"github.com/Apurer/go-sales-api-server/internal/shared/contracts"
)

// DecodeDecrement parses an inventory-updates payload into a command.
func DecodeDecrement(payload []byte) (ports.DecrementCommand, error) {
	var msg contracts.InventoryDecrement
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ports.DecrementCommand{}, apperrors.BadMessage("Invalid message: body is not JSON", err)
	}
	return ports.DecrementCommand{
		EventID:      msg.EventID,
		ProductID:    msg.ProductID,
		QuantitySold: msg.QuantitySold,
	}, nil
}

// HandleMessage adapts the service to the broker reader loop. Malformed
// payloads surface as permanent errors so the reader acknowledges them
// instead of redelivering forever.
func (s *Service) HandleMessage(ctx context.Context, payload []byte) error {
	cmd, err := DecodeDecrement(payload)
	if err != nil {
		return err
	}
	_, err = s.ApplyDecrement(ctx, cmd)
	return err
}
