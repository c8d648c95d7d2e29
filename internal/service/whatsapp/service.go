package whatsapp

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/shopms/internal/config"
	"github.com/mamadbah2/shopms/internal/domain/models"
	client "github.com/mamadbah2/shopms/pkg/clients/whatsapp"
)

// MessagingService pushes text notifications to the shop owner.
type MessagingService interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg    config.WhatsAppConfig
	client client.Client
	logger *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, client client.Client, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		cfg:    cfg,
		client: client,
		logger: logger,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// SendOutbound sends req.Message to req.To, or to the configured report recipient
// when req.To is empty.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to := req.To
	if to == "" {
		to = s.cfg.RecipientID
	}
	if to == "" {
		return errors.New("no whatsapp recipient configured")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	messageID, err := s.client.SendText(ctxWithTimeout, to, req.Message)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			s.logger.Warn("whatsapp rejected message",
				zap.Int("status", apiErr.Status),
				zap.Int("code", apiErr.Code),
				zap.String("fbtrace_id", apiErr.TraceID))
		}
		return err
	}

	s.logger.Info("outbound message sent", zap.String("to", to), zap.String("message_id", messageID))
	return nil
}
