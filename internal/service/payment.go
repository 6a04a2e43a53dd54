package service

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/dto"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/provider"
	"donaciones-backend/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService mediates between donation records and the payment
// gateways. Status moves out of PENDING only on a verified webhook event or
// a capture response; client-supplied state is never trusted.
type PaymentService interface {
	CreateOrder(ctx context.Context, providerName string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	Capture(ctx context.Context, orderRef string) (*dto.PaymentStatusResponse, error)
	HandleWebhook(ctx context.Context, providerName string, headers http.Header, body []byte) error
	Status(ctx context.Context, paymentID string) (*dto.PaymentStatusResponse, error)
	Methods() []string
}

type paymentServiceImpl struct {
	db               *gorm.DB
	providers        map[string]provider.Provider
	baseURL          string
	donationRepo     repository.DonationRepository
	paymentRepo      repository.PaymentRepository
	webhookEventRepo repository.WebhookEventRepository
	logger           *zap.Logger
}

func NewPaymentService(
	db *gorm.DB,
	providers map[string]provider.Provider,
	baseURL string,
	donationRepo repository.DonationRepository,
	paymentRepo repository.PaymentRepository,
	webhookEventRepo repository.WebhookEventRepository,
	logger *zap.Logger,
) PaymentService {
	return &paymentServiceImpl{
		db:               db,
		providers:        providers,
		baseURL:          baseURL,
		donationRepo:     donationRepo,
		paymentRepo:      paymentRepo,
		webhookEventRepo: webhookEventRepo,
		logger:           logger,
	}
}

func (s *paymentServiceImpl) provider(name string) (provider.Provider, error) {
	p, ok := s.providers[name]
	if !ok {
		return nil, apperr.Validation("método de pago no soportado")
	}
	return p, nil
}

func (s *paymentServiceImpl) CreateOrder(ctx context.Context, providerName string, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	p, err := s.provider(providerName)
	if err != nil {
		return nil, err
	}

	donation, err := s.donationRepo.FindByID(ctx, req.IDDonacion)
	if err != nil {
		return nil, err
	}
	if !donation.Amount.Valid {
		return nil, apperr.Validation("una donación en especie no se paga en línea")
	}

	currency := donation.Currency
	if currency == "" {
		currency = "MXN"
	}

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = s.baseURL + "/pagos/exito"
	}
	cancelURL := req.CancelURL
	if cancelURL == "" {
		cancelURL = s.baseURL + "/pagos/cancelado"
	}

	payment := &model.Payment{
		ID:         uuid.NewString(),
		DonationID: donation.ID,
		Provider:   p.Name(),
		OrderRef:   uuid.NewString(), // placeholder until the provider answers
		Amount:     donation.Amount.Decimal,
		Currency:   currency,
		Status:     model.StatusCreated,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.paymentRepo.Create(ctx, tx, payment)
	})
	if err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	orderRef, err := p.CreateOrder(ctx, provider.CreateOrderRequest{
		PaymentID:   payment.ID,
		Description: donation.Description,
		Amount:      payment.Amount,
		Currency:    currency,
		ReturnURL:   returnURL,
		CancelURL:   cancelURL,
	})
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.paymentRepo.MarkPending(ctx, tx, payment.ID, orderRef.Ref)
	})
	if err != nil {
		return nil, fmt.Errorf("mark payment pending: %w", err)
	}

	return &dto.CreateOrderResponse{
		IDPago:     payment.ID,
		OrderID:    orderRef.Ref,
		ApproveURL: orderRef.ApproveURL,
		Estado:     model.StatusPending,
	}, nil
}

func (s *paymentServiceImpl) Capture(ctx context.Context, orderRef string) (*dto.PaymentStatusResponse, error) {
	payment, err := s.paymentRepo.FindByOrderRef(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	// capturing an already settled payment is a no-op
	if model.Terminal(payment.Status) {
		return &dto.PaymentStatusResponse{IDPago: payment.ID, Estado: payment.Status}, nil
	}

	p, err := s.provider(payment.Provider)
	if err != nil {
		return nil, err
	}

	result, err := p.Capture(ctx, orderRef)
	if err != nil {
		return nil, err
	}

	status := payment.Status
	if model.Terminal(result.Status) {
		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			_, err := s.paymentRepo.Transition(ctx, tx, payment.ID, result.Status, repository.PaymentDetail{
				PayerEmail: result.PayerEmail,
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("record capture result: %w", err)
		}
		status = result.Status
	}

	return &dto.PaymentStatusResponse{IDPago: payment.ID, Estado: status}, nil
}

func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, providerName string, headers http.Header, body []byte) error {
	p, err := s.provider(providerName)
	if err != nil {
		return err
	}

	event, err := p.ParseWebhook(ctx, headers, body)
	if err != nil {
		return fmt.Errorf("parse webhook: %w", err)
	}

	processed, err := s.webhookEventRepo.Exists(ctx, event.EventID)
	if err != nil {
		return fmt.Errorf("check webhook event: %w", err)
	}
	if processed {
		s.logger.Info("webhook replay ignored",
			zap.String("provider", providerName),
			zap.String("event_id", event.EventID))
		return nil
	}

	payment, err := s.resolvePayment(ctx, event)
	if err != nil {
		// unknown payments are acknowledged so the provider stops retrying
		s.logger.Warn("webhook for unknown payment",
			zap.String("provider", providerName),
			zap.String("event_id", event.EventID),
			zap.String("order_ref", event.OrderRef))
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if event.Status != "" {
			transitioned, err := s.paymentRepo.Transition(ctx, tx, payment.ID, event.Status, repository.PaymentDetail{
				PayerEmail:        event.PayerEmail,
				CardSuffix:        event.CardSuffix,
				ProviderPaymentID: event.ProviderPaymentID,
			})
			if err != nil {
				return fmt.Errorf("transition payment: %w", err)
			}
			if !transitioned {
				s.logger.Info("payment already terminal, webhook ignored",
					zap.String("payment_id", payment.ID),
					zap.String("event_id", event.EventID))
			}
		}

		return s.webhookEventRepo.MarkProcessed(ctx, tx, event.EventID, providerName, event.EventType)
	})
}

func (s *paymentServiceImpl) resolvePayment(ctx context.Context, event *provider.WebhookEvent) (*model.Payment, error) {
	if event.OrderRef != "" {
		return s.paymentRepo.FindByOrderRef(ctx, event.OrderRef)
	}
	if event.PaymentID != "" {
		return s.paymentRepo.FindByID(ctx, event.PaymentID)
	}
	return nil, apperr.ErrNotFound
}

func (s *paymentServiceImpl) Status(ctx context.Context, paymentID string) (*dto.PaymentStatusResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	return &dto.PaymentStatusResponse{IDPago: payment.ID, Estado: payment.Status}, nil
}

func (s *paymentServiceImpl) Methods() []string {
	methods := make([]string, 0, len(s.providers))
	for name := range s.providers {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}
