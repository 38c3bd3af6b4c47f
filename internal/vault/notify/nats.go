package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// publisher is the part of *nats.Conn the notifier needs.
type publisher interface {
	Publish(subject string, data []byte) error
}

// NATSNotifier publishes logout events as JSON on
// "<prefix>.accounts.<account id>.logout". Clients subscribe to their own
// account subject.
type NATSNotifier struct {
	pub    publisher
	prefix string
}

func NewNATSNotifier(pub publisher, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = "vault"
	}
	return &NATSNotifier{pub: pub, prefix: prefix}
}

// ConnectNATS dials url with reconnect handling suitable for a long lived
// publisher.
func ConnectNATS(url, name string, log *slog.Logger) (*nats.Conn, error) {
	conn, err := nats.Connect(url,
		nats.Name(name),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("nats disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

func (n *NATSNotifier) Subject(accountID string) string {
	return n.prefix + ".accounts." + accountID + ".logout"
}

func (n *NATSNotifier) LogoutOtherSessions(ctx context.Context, ev LogoutEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal logout event: %w", err)
	}
	if err := n.pub.Publish(n.Subject(ev.AccountID), data); err != nil {
		return fmt.Errorf("publish logout event: %w", err)
	}
	return nil
}
