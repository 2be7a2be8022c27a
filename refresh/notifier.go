package refresh

import (
	evbus "github.com/asaskevich/EventBus"
	"github.com/pkg/errors"

	"make-it-right/payment"
)

// TopicPaymentSucceeded is published once per accepted payment.
const TopicPaymentSucceeded = "payment:succeeded"

const eventBuffer = 8

// Notifier publishes accepted payments on an event bus. The update loop
// reads them from Events; other listeners can Subscribe directly.
type Notifier struct {
	bus    evbus.Bus
	events chan payment.Receipt
}

// NewNotifier returns a notifier whose Events channel is already subscribed.
func NewNotifier() *Notifier {
	n := &Notifier{
		bus:    evbus.New(),
		events: make(chan payment.Receipt, eventBuffer),
	}
	// Subscribe only fails for a non-func handler.
	_ = n.bus.Subscribe(TopicPaymentSucceeded, n.forward)
	return n
}

// NotifyPaymentSucceeded publishes r to every subscriber.
func (n *Notifier) NotifyPaymentSucceeded(r payment.Receipt) {
	n.bus.Publish(TopicPaymentSucceeded, r)
}

// Events delivers every published receipt in order.
func (n *Notifier) Events() <-chan payment.Receipt { return n.events }

// Subscribe registers an extra synchronous listener.
func (n *Notifier) Subscribe(fn func(payment.Receipt)) error {
	if err := n.bus.Subscribe(TopicPaymentSucceeded, fn); err != nil {
		return errors.Wrap(err, "subscribing to payment events")
	}
	return nil
}

// forward never blocks the publisher. A full buffer drops the event.
func (n *Notifier) forward(r payment.Receipt) {
	select {
	case n.events <- r:
	default:
	}
}
