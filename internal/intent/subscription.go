package intent

import (
	"strings"
	"time"

	"github.com/cloo-solutions/templeqa/internal/query"
)

// Subscription commands returned by SubscriptionCommand.
const (
	CommandSubscribe   = "subscribe"
	CommandUnsubscribe = "unsubscribe"
)

var (
	subscribePhrases   = []string{"subscribe", "subscribe me", "join", "start updates", "sign me up"}
	unsubscribePhrases = []string{"unsubscribe", "unsubscribe me", "stop", "stop messages", "stop updates", "cancel", "opt out"}
)

// SubscriptionHandler acknowledges subscribe and unsubscribe commands. The
// subscriber list itself is kept by the messaging transport, which reads the
// command through SubscriptionCommand.
type SubscriptionHandler struct{}

func NewSubscriptionHandler() *SubscriptionHandler {
	return &SubscriptionHandler{}
}

func (h *SubscriptionHandler) Name() string { return NameSubscription }

func (h *SubscriptionHandler) Handle(q string, _ time.Time) (string, bool) {
	cmd, ok := SubscriptionCommand(q)
	if !ok {
		return "", false
	}
	if cmd == CommandSubscribe {
		return "You are subscribed to temple updates. Reply STOP at any time to unsubscribe.", true
	}
	return "You have been unsubscribed from temple updates. Reply SUBSCRIBE to join again.", true
}

// SubscriptionCommand reports whether q, as a whole, is a subscription
// command. Mentions inside a sentence such as "does the bus stop nearby" do
// not count.
func SubscriptionCommand(q string) (string, bool) {
	cmd := strings.Join(query.Words(q), " ")
	for _, p := range unsubscribePhrases {
		if cmd == p {
			return CommandUnsubscribe, true
		}
	}
	for _, p := range subscribePhrases {
		if cmd == p {
			return CommandSubscribe, true
		}
	}
	return "", false
}
