package http

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/checkoutlabs/paypal-gateway/internal/domain/model"
	wire "github.com/checkoutlabs/paypal-gateway/internal/domain/paypal"
	"github.com/checkoutlabs/paypal-gateway/internal/domain/repository"
)

// fakeClient is an in-memory ProcessorClient recording calls.
type fakeClient struct {
	mu sync.Mutex

	verifyStatus string
	verifyCalls  int

	createOrderResult  *wire.Order
	captureOrderResult *wire.Order
	refundResult       *wire.Refund
	captureCalls       int
}

func (f *fakeClient) CreateOrder(ctx context.Context, req *wire.OrderRequest) (*wire.Order, error) {
	if f.createOrderResult == nil {
		return nil, errors.New("no order configured")
	}
	return f.createOrderResult, nil
}

func (f *fakeClient) CaptureOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error) {
	f.mu.Lock()
	f.captureCalls++
	f.mu.Unlock()
	if f.captureOrderResult == nil {
		return nil, errors.New("no capture configured")
	}
	return f.captureOrderResult, nil
}

func (f *fakeClient) AuthorizeOrder(ctx context.Context, token string, req *wire.OrderRequest) (*wire.Order, error) {
	return nil, errors.New("not configured")
}

func (f *fakeClient) RefundCapture(ctx context.Context, captureID string, req *wire.RefundRequest) (*wire.Refund, error) {
	if f.refundResult == nil {
		return nil, errors.New("no refund configured")
	}
	return f.refundResult, nil
}

func (f *fakeClient) CreateAgreementToken(ctx context.Context, req *wire.AgreementTokenRequest) (*wire.AgreementToken, error) {
	return &wire.AgreementToken{TokenID: "BA-TOKEN"}, nil
}

func (f *fakeClient) CreateBillingAgreement(ctx context.Context, tokenID string) (*wire.Agreement, error) {
	return &wire.Agreement{ID: "B-AGREEMENT"}, nil
}

func (f *fakeClient) UserInfo(ctx context.Context) (*wire.UserInfo, error) {
	return &wire.UserInfo{UserID: "merchant-1", Email: "merchant@example.com"}, nil
}

func (f *fakeClient) CreateWebhook(ctx context.Context, listenerURL string, eventTypes []string) (*wire.WebhookRegistration, error) {
	return &wire.WebhookRegistration{ID: "WH-NEW", URL: listenerURL}, nil
}

func (f *fakeClient) DeleteWebhook(ctx context.Context, webhookID string) error {
	return nil
}

func (f *fakeClient) VerifyWebhookSignature(ctx context.Context, req *wire.VerifySignatureRequest) (*wire.VerifySignatureResponse, error) {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()
	return &wire.VerifySignatureResponse{VerificationStatus: f.verifyStatus}, nil
}

// fakeOrders is an in-memory order store keyed by id, with substring
// transaction lookup like the real repository.
type fakeOrders struct {
	mu      sync.Mutex
	byID    map[int64]*model.Order
	lookups int
	notes   []string
	refunds []*model.OrderRefund
}

func newFakeOrders(orders ...*model.Order) *fakeOrders {
	f := &fakeOrders{byID: make(map[int64]*model.Order)}
	for _, o := range orders {
		f.byID[o.ID] = o
	}
	return f
}

func (f *fakeOrders) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrders) FindByTransactionID(ctx context.Context, transactionID string) (*model.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	for _, o := range f.byID {
		if o.PaymentMethod != model.GatewayID {
			continue
		}
		stored := o.Meta(model.MetaTransactionID)
		if stored != "" && strings.Contains(stored, transactionID) {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (f *fakeOrders) Save(ctx context.Context, order *model.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[order.ID] = order
	return nil
}

func (f *fakeOrders) TransitionStatus(ctx context.Context, orderID int64, expected []model.OrderStatus, to model.OrderStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.byID[orderID]
	if !ok {
		return false, repository.ErrOrderNotFound
	}
	for _, s := range expected {
		if o.Status == s {
			o.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrders) AddNote(ctx context.Context, orderID int64, note string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeOrders) CreateRefund(ctx context.Context, refund *model.OrderRefund) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, refund)
	return nil
}

func (f *fakeOrders) RefundExists(ctx context.Context, orderID int64, processorRefundID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.refunds {
		if r.OrderID == orderID && r.ProcessorRefundID == processorRefundID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrders) RefundedTotal(ctx context.Context, orderID int64) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := decimal.Zero
	for _, r := range f.refunds {
		if r.OrderID == orderID {
			total = total.Add(r.Amount)
		}
	}
	return total, nil
}

// fakeSettings is an in-memory key-value store.
type fakeSettings struct {
	mu     sync.Mutex
	values map[string]string
}

func newFakeSettings() *fakeSettings {
	return &fakeSettings{values: make(map[string]string)}
}

func (f *fakeSettings) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key], nil
}

func (f *fakeSettings) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

func (f *fakeSettings) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	return nil
}

// fakeEvents is an in-memory webhook event log.
type fakeEvents struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeEvents() *fakeEvents {
	return &fakeEvents{seen: make(map[string]bool)}
}

func (f *fakeEvents) SaveEvent(ctx context.Context, eventID, eventType, mode string, data json.RawMessage) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[eventID] {
		return false, nil
	}
	f.seen[eventID] = true
	return true, nil
}

func (f *fakeEvents) MarkProcessed(ctx context.Context, eventID string) error {
	return nil
}
