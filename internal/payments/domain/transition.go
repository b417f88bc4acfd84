package domain

import ordersdomain "github.com/john-jeavons/kenya-ceramic-project/internal/orders/domain"

// GatewayState is the payment state as reported by IntaSend, either pushed
// via webhook or pulled by a status check.
type GatewayState string

const (
	GatewayPending    GatewayState = "PENDING"
	GatewayProcessing GatewayState = "PROCESSING"
	GatewayFailed     GatewayState = "FAILED"
	GatewayComplete   GatewayState = "COMPLETE"
	GatewayRetry      GatewayState = "RETRY"
)

// Transition is the (payment status, order status) pair a gateway state
// maps to.
type Transition struct {
	Payment Status
	Order   ordersdomain.OrderStatus
}

// Reconcile maps a gateway-reported state to local statuses. It is the
// single source of truth for the webhook handler and the status poller; the
// two differ only in how they learn the gateway state. The mapping is a
// pure function, so concurrent writers observing the same state converge
// to the same stored pair.
//
// A failed payment returns the order to pending rather than cancelling it:
// the customer may retry with a fresh attempt. Unrecognized states are
// treated as still in flight.
func Reconcile(state GatewayState) Transition {
	switch state {
	case GatewayComplete:
		return Transition{Payment: StatusCompleted, Order: ordersdomain.StatusConfirmed}
	case GatewayFailed:
		return Transition{Payment: StatusFailed, Order: ordersdomain.StatusPending}
	default:
		// PROCESSING, PENDING, RETRY and anything unknown.
		return Transition{Payment: StatusPending, Order: ordersdomain.StatusPaymentInitiated}
	}
}
