package handler

import (
	"context"
	"fmt"

	"github.com/idewave/tine/internal/protocol"
	"github.com/idewave/tine/internal/realm"
)

// RealmListHandler answers REALM_LIST requests. The request payload carries
// no fields this gateway cares about; it exists only to trigger the reply.
type RealmListHandler struct {
	Source realm.Source
}

// Handle implements Handler.
func (h *RealmListHandler) Handle(ctx context.Context, _ *HandlerInput) ([]HandlerOutput, error) {
	realms, err := h.Source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("handler: listing realms: %w", err)
	}

	return []HandlerOutput{{Kind: OutputData, Data: protocol.EncodeRealmList(realms)}}, nil
}
