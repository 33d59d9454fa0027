// Package relay forwards world events from the in-process bus to NATS so
// tools outside the server can follow logins and partition churn.
//
// Subjects, under the configured prefix:
//
//	<prefix>.player.entered
//	<prefix>.player.left
//	<prefix>.object.despawned
//	<prefix>.partition.unloaded
//
// Payloads are JSON encoded event structs.
package relay

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/l1jgo/replicore/internal/config"
	"github.com/l1jgo/replicore/internal/core/event"
)

const (
	SubjectPlayerEntered     = "player.entered"
	SubjectPlayerLeft        = "player.left"
	SubjectObjectDespawned   = "object.despawned"
	SubjectPartitionUnloaded = "partition.unloaded"
)

// Publisher owns one NATS connection. Publish is called from the game loop
// goroutine; nats.Conn buffers and writes in the background.
type Publisher struct {
	conn   *nats.Conn
	prefix string
	log    *zap.Logger
}

// Connect dials cfg.NatsURL and keeps reconnecting for the life of the server.
func Connect(cfg config.EventsConfig, name string, log *zap.Logger) (*Publisher, error) {
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(name),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS 連線中斷", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("NATS 已重新連線", zap.String("url", c.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", cfg.NatsURL, err)
	}
	log.Info("NATS 連線成功", zap.String("url", conn.ConnectedUrl()))
	return NewPublisher(conn, cfg.SubjectPrefix, log), nil
}

func NewPublisher(conn *nats.Conn, prefix string, log *zap.Logger) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{conn: conn, prefix: prefix, log: log}
}

// Attach subscribes the publisher to every relayed event type on bus.
func (p *Publisher) Attach(bus *event.Bus) {
	forward[event.PlayerEntered](p, bus, SubjectPlayerEntered)
	forward[event.PlayerLeft](p, bus, SubjectPlayerLeft)
	forward[event.ObjectDespawned](p, bus, SubjectObjectDespawned)
	forward[event.PartitionUnloaded](p, bus, SubjectPartitionUnloaded)
}

func forward[T any](p *Publisher, bus *event.Bus, subject string) {
	event.Subscribe(bus, func(e T) {
		if err := p.Publish(subject, e); err != nil {
			p.log.Warn("事件發布失敗", zap.String("subject", subject), zap.Error(err))
		}
	})
}

// Subject returns the full subject name for a relative one.
func (p *Publisher) Subject(rel string) string {
	return p.prefix + "." + rel
}

// Publish JSON encodes v and publishes it under the prefixed subject.
func (p *Publisher) Publish(subject string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", subject, err)
	}
	return p.conn.Publish(p.Subject(subject), data)
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn("NATS 關閉失敗", zap.Error(err))
	}
}
