package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrOrderAlreadyRedeemed is returned when a payment order has already
// been converted into credits.
var ErrOrderAlreadyRedeemed = fmt.Errorf("order already redeemed")

// RedeemOrder converts a verified payment into credits exactly once.
// The redeemed-order insert and the balance top-up are a single SQL
// function (redeem_order) with the order id as a unique key, so a
// replayed verification can never credit twice. The function returns
// true when this call performed the redemption.
func (s *Store) RedeemOrder(userID uuid.UUID, orderID string, credits int64) error {
	result := strings.TrimSpace(s.db.Rpc("redeem_order", "", map[string]interface{}{
		"p_user_id":  userID.String(),
		"p_order_id": orderID,
		"p_credits":  credits,
	}))
	if result == "" {
		s.log.Errorf("Empty response from redeem_order RPC for order %s", orderID)
		return fmt.Errorf("redeem order: empty RPC response")
	}

	ok, err := strconv.ParseBool(result)
	if err != nil {
		s.log.Errorf("Unexpected redeem_order response for order %s: %q", orderID, result)
		return fmt.Errorf("redeem order: unexpected response %q", result)
	}
	if !ok {
		return ErrOrderAlreadyRedeemed
	}
	return nil
}
