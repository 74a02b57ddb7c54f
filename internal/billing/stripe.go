package billing

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"

	"github.com/cgchiraggupta/kalakar/models"
)

var (
	// ErrPaymentIncomplete is returned by Verify when the checkout
	// session has not been paid yet.
	ErrPaymentIncomplete = errors.New("payment not completed")

	// ErrOrderNotFound is returned when the session does not exist or
	// belongs to a different account. The two cases are not
	// distinguished, so verification cannot probe for foreign orders.
	ErrOrderNotFound = errors.New("order not found")
)

// CreditStore is the slice of the data layer billing needs. RedeemOrder
// must be conditional on the order id: the first call credits, every
// replay reports ErrOrderAlreadyRedeemed.
type CreditStore interface {
	GetPlan(planID string) (*models.Plan, error)
	RedeemOrder(userID uuid.UUID, orderID string, credits int64) error
}

// Order is the client-facing result of creating a checkout session.
type Order struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
	PlanID      string `json:"plan_id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}

// Service creates and verifies Stripe checkout sessions for credit
// bundles. The purchased credit amount rides on session metadata so
// verification does not need a plans lookup to match payment to quota.
type Service struct {
	store      CreditStore
	log        *logrus.Logger
	successURL string
	cancelURL  string

	// createSession and getSession wrap the Stripe client, swappable
	// in tests.
	createSession func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	getSession    func(id string) (*stripe.CheckoutSession, error)
}

// New configures the Stripe client and returns the billing service.
func New(store CreditStore, log *logrus.Logger, apiKey, successURL, cancelURL string) *Service {
	stripe.Key = apiKey
	return &Service{
		store:         store,
		log:           log,
		successURL:    successURL,
		cancelURL:     cancelURL,
		createSession: session.New,
		getSession: func(id string) (*stripe.CheckoutSession, error) {
			return session.Get(id, nil)
		},
	}
}

// CreateOrder opens a checkout session for the given plan. The caller
// redirects the user to CheckoutURL; Verify picks up after payment.
func (s *Service) CreateOrder(userID uuid.UUID, planID string) (*Order, error) {
	plan, err := s.store.GetPlan(planID)
	if err != nil {
		return nil, err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(plan.Currency),
					UnitAmount: stripe.Int64(plan.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(plan.Name),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("plan_id", plan.ID)
	params.AddMetadata("credits", strconv.FormatInt(plan.Credits, 10))

	sess, err := s.createSession(params)
	if err != nil {
		s.log.Errorf("Error creating checkout session for user %s plan %s: %v", userID, planID, err)
		return nil, fmt.Errorf("create checkout session: %w", err)
	}

	return &Order{
		OrderID:     sess.ID,
		CheckoutURL: sess.URL,
		PlanID:      plan.ID,
		AmountCents: plan.AmountCents,
		Currency:    plan.Currency,
	}, nil
}

// Verify confirms a paid session and redeems it for credits. The
// redemption is conditional on the order id at the storage layer, so
// replaying a verification never credits twice.
func (s *Service) Verify(userID uuid.UUID, orderID string) (int64, error) {
	sess, err := s.getSession(orderID)
	if err != nil {
		s.log.Errorf("Error fetching checkout session %s: %v", orderID, err)
		return 0, fmt.Errorf("fetch checkout session: %w", err)
	}

	if sess.Metadata["user_id"] != userID.String() {
		return 0, ErrOrderNotFound
	}
	if sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return 0, ErrPaymentIncomplete
	}

	credits, err := strconv.ParseInt(sess.Metadata["credits"], 10, 64)
	if err != nil || credits <= 0 {
		s.log.Errorf("Checkout session %s carries invalid credits metadata %q", orderID, sess.Metadata["credits"])
		return 0, fmt.Errorf("invalid credits metadata on order %s", orderID)
	}

	if err := s.store.RedeemOrder(userID, orderID, credits); err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{"user_id": userID, "order_id": orderID, "credits": credits}).Info("Payment verified, credits added")
	return credits, nil
}
