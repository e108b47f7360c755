package app

import (
	"context"
	"errors"
	"log"

	"github.com/marvinrgb/argue-well-api/app/config"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/customer"
)

// InitStripe wires the Stripe API key from the environment.
func InitStripe() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config for stripe: %v", err)
	}
	stripe.Key = cfg.Stripe.SecretKey
}

// ensureStripeCustomer finds or creates a Stripe Customer for the given
// user. It reuses users.stripe_customer_id when present, otherwise creates a
// new customer with metadata user_id = <userID> and stores the id.
func ensureStripeCustomer(ctx context.Context, userID string) (string, error) {
	if store == nil {
		return "", errors.New("store not initialized")
	}
	if userID == "" {
		return "", errors.New("missing user id")
	}

	user, err := store.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := store.SetStripeCustomerID(ctx, userID, cust.ID); err != nil {
		return "", err
	}
	return cust.ID, nil
}
