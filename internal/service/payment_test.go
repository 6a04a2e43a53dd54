package service

import (
	"context"
	"net/http"
	"testing"

	"donaciones-backend/internal/apperr"
	"donaciones-backend/internal/dto"
	"donaciones-backend/internal/model"
	"donaciones-backend/internal/provider"
	"donaciones-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// one connection so every session sees the same in-memory database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Donation{},
		&model.EvidenceFile{},
		&model.Invoice{},
		&model.Payment{},
		&model.WebhookEvent{},
	))

	return db
}

type stubProvider struct {
	name string

	createResp *provider.OrderRef
	createErr  error

	captureResp  *provider.CaptureResult
	captureErr   error
	captureCalls int

	webhookEvent *provider.WebhookEvent
	webhookErr   error
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) CreateOrder(ctx context.Context, req provider.CreateOrderRequest) (*provider.OrderRef, error) {
	return s.createResp, s.createErr
}

func (s *stubProvider) Capture(ctx context.Context, orderRef string) (*provider.CaptureResult, error) {
	s.captureCalls++
	return s.captureResp, s.captureErr
}

func (s *stubProvider) ParseWebhook(ctx context.Context, headers http.Header, body []byte) (*provider.WebhookEvent, error) {
	return s.webhookEvent, s.webhookErr
}

type paymentFixture struct {
	db       *gorm.DB
	svc      PaymentService
	provider *stubProvider
	payments repository.PaymentRepository
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	db := newTestDB(t)
	stub := &stubProvider{name: model.ProviderPaypal}

	donationRepo := repository.NewDonationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)

	svc := NewPaymentService(
		db,
		map[string]provider.Provider{model.ProviderPaypal: stub},
		"http://localhost:4000",
		donationRepo,
		paymentRepo,
		webhookRepo,
		zap.NewNop(),
	)

	return &paymentFixture{db: db, svc: svc, provider: stub, payments: paymentRepo}
}

func seedDonation(t *testing.T, db *gorm.DB, kind string, amount string) *model.Donation {
	t.Helper()

	donation := &model.Donation{
		ID:     "don-" + kind + "-" + amount,
		UserID: "u1",
		Kind:   kind,
	}
	if amount != "" {
		donation.Amount = decimal.NewNullDecimal(decimal.RequireFromString(amount))
	}
	require.NoError(t, db.Create(donation).Error)
	return donation
}

func seedPayment(t *testing.T, db *gorm.DB, donationID, orderRef, status string) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		ID:         "pago-" + orderRef,
		DonationID: donationID,
		Provider:   model.ProviderPaypal,
		OrderRef:   orderRef,
		Amount:     decimal.RequireFromString("250.00"),
		Currency:   "MXN",
		Status:     status,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestCreateOrderLeavesPaymentPending(t *testing.T) {
	f := newPaymentFixture(t)
	donation := seedDonation(t, f.db, model.KindMonetaria, "250.00")

	f.provider.createResp = &provider.OrderRef{Ref: "PP-1", ApproveURL: "https://paypal.example.com/approve"}

	resp, err := f.svc.CreateOrder(context.Background(), model.ProviderPaypal, &dto.CreateOrderRequest{
		IDDonacion: donation.ID,
	})
	require.NoError(t, err)

	// the acknowledgment is pending, never an immediate approval
	assert.Equal(t, model.StatusPending, resp.Estado)
	assert.Equal(t, "PP-1", resp.OrderID)
	assert.NotEmpty(t, resp.IDPago)

	stored, err := f.payments.FindByOrderRef(context.Background(), "PP-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)
}

func TestCreateOrderForInKindDonationFails(t *testing.T) {
	f := newPaymentFixture(t)
	donation := seedDonation(t, f.db, model.KindEspecie, "")

	_, err := f.svc.CreateOrder(context.Background(), model.ProviderPaypal, &dto.CreateOrderRequest{
		IDDonacion: donation.ID,
	})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateOrderUnknownDonation(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), model.ProviderPaypal, &dto.CreateOrderRequest{
		IDDonacion: "no-existe",
	})
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestWebhookReplayIsSingleTransition(t *testing.T) {
	f := newPaymentFixture(t)
	donation := seedDonation(t, f.db, model.KindMonetaria, "250.00")
	payment := seedPayment(t, f.db, donation.ID, "PP-1", model.StatusPending)

	f.provider.webhookEvent = &provider.WebhookEvent{
		EventID:   "EVT-1",
		EventType: "PAYMENT.CAPTURE.COMPLETED",
		OrderRef:  "PP-1",
		Status:    model.StatusApproved,
	}

	require.NoError(t, f.svc.HandleWebhook(context.Background(), model.ProviderPaypal, nil, []byte(`{}`)))
	// identical replay acknowledges without a second transition
	require.NoError(t, f.svc.HandleWebhook(context.Background(), model.ProviderPaypal, nil, []byte(`{}`)))

	stored, err := f.payments.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)

	var events int64
	require.NoError(t, f.db.Model(&model.WebhookEvent{}).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestWebhookEventDoubleInsertIsIgnored(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewWebhookEventRepository(db)

	ctx := context.Background()
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkProcessed(ctx, tx, "EVT-9", model.ProviderPaypal, "PAYMENT.CAPTURE.COMPLETED")
	}))

	// a delivery that raced past the dedupe check must still acknowledge
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return repo.MarkProcessed(ctx, tx, "EVT-9", model.ProviderPaypal, "PAYMENT.CAPTURE.COMPLETED")
	}))

	var events int64
	require.NoError(t, db.Model(&model.WebhookEvent{}).Count(&events).Error)
	assert.Equal(t, int64(1), events)
}

func TestWebhookCannotRegressTerminalStatus(t *testing.T) {
	f := newPaymentFixture(t)
	donation := seedDonation(t, f.db, model.KindMonetaria, "250.00")
	payment := seedPayment(t, f.db, donation.ID, "PP-1", model.StatusApproved)

	f.provider.webhookEvent = &provider.WebhookEvent{
		EventID:  "EVT-2",
		OrderRef: "PP-1",
		Status:   model.StatusFailed,
	}

	require.NoError(t, f.svc.HandleWebhook(context.Background(), model.ProviderPaypal, nil, []byte(`{}`)))

	stored, err := f.payments.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
}

func TestWebhookForUnknownPaymentIsAcknowledged(t *testing.T) {
	f := newPaymentFixture(t)

	f.provider.webhookEvent = &provider.WebhookEvent{
		EventID:  "EVT-3",
		OrderRef: "desconocido",
		Status:   model.StatusApproved,
	}

	require.NoError(t, f.svc.HandleWebhook(context.Background(), model.ProviderPaypal, nil, []byte(`{}`)))
}

func TestCaptureOnTerminalPaymentSkipsProvider(t *testing.T) {
	f := newPaymentFixture(t)
	donation := seedDonation(t, f.db, model.KindMonetaria, "250.00")
	seedPayment(t, f.db, donation.ID, "PP-1", model.StatusApproved)

	resp, err := f.svc.Capture(context.Background(), "PP-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, resp.Estado)
	assert.Zero(t, f.provider.captureCalls)
}

func TestCaptureRecordsApprovedResult(t *testing.T) {
	f := newPaymentFixture(t)
	donation := seedDonation(t, f.db, model.KindMonetaria, "250.00")
	payment := seedPayment(t, f.db, donation.ID, "PP-1", model.StatusPending)

	f.provider.captureResp = &provider.CaptureResult{
		Status:     model.StatusApproved,
		PayerEmail: "donante@example.com",
	}

	resp, err := f.svc.Capture(context.Background(), "PP-1")
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, resp.Estado)

	stored, err := f.payments.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusApproved, stored.Status)
	assert.Equal(t, "donante@example.com", stored.PayerEmail)
}

func TestStatusUnknownPayment(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.Status(context.Background(), "no-existe")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMethodsListsRegisteredProviders(t *testing.T) {
	f := newPaymentFixture(t)

	assert.Equal(t, []string{model.ProviderPaypal}, f.svc.Methods())
}
