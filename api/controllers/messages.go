package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/rotaops/fleetline-backend/api/responses"
	"github.com/rotaops/fleetline-backend/api/validators"
	"github.com/rotaops/fleetline-backend/internal/dispatch"
	"github.com/rotaops/fleetline-backend/pkg/enums"
	pkgerrors "github.com/rotaops/fleetline-backend/pkg/errors"
	"github.com/rotaops/fleetline-backend/pkg/logger"
	"github.com/rotaops/fleetline-backend/pkg/types"
)

// MessageDispatcher is the processing pipeline behind the inbound webhook.
type MessageDispatcher interface {
	Handle(ctx context.Context, msg dispatch.InboundMessage) (dispatch.Outcome, error)
}

type inboundMessageRequest struct {
	TenantID          string          `json:"tenant_id" validate:"required,uuid"`
	ProviderMessageID string          `json:"provider_message_id"`
	Phone             string          `json:"phone" validate:"required"`
	Kind              string          `json:"kind" validate:"required,oneof=text image audio location"`
	Text              *string         `json:"text"`
	MediaURL          *string         `json:"media_url"`
	Caption           *string         `json:"caption"`
	Location          *types.GeoPoint `json:"location"`
}

// InboundMessage accepts a provider-normalized chat message and runs it
// through the dispatcher. Processing faults still answer 200: the provider
// retries on non-2xx, and retrying a message whose effects are already
// committed only produces duplicate work.
func InboundMessage(dispatcher MessageDispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req inboundMessageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tenantID, err := uuid.Parse(req.TenantID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tenant_id"))
			return
		}
		kind, err := enums.ParseMessageKind(req.Kind)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind"))
			return
		}

		msg := dispatch.InboundMessage{
			TenantID:          tenantID,
			ProviderMessageID: req.ProviderMessageID,
			RawPhone:          req.Phone,
			Kind:              kind,
			Text:              req.Text,
			MediaURL:          req.MediaURL,
			Caption:           req.Caption,
		}
		if req.Location != nil {
			msg.Lat = &req.Location.Lat
			msg.Lng = &req.Location.Lng
		}

		outcome, err := dispatcher.Handle(ctx, msg)
		if err != nil && logg != nil {
			logg.Error(ctx, "inbound message processing degraded", err)
		}

		responses.WriteSuccess(w, map[string]string{"status": outcome.String()})
	}
}
