package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/nats-io/nats.go"
)

const DefaultSubjectPrefix = "accommodation"

type NATSConfig struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
}

// msgPublisher - часть *nats.Conn, нужная для публикации.
type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

type drainCloser interface {
	Drain() error
	Close()
}

// NATSPublisher публикует события заявок в <prefix>.<тип события>.
type NATSPublisher struct {
	conn   msgPublisher
	nc     drainCloser
	closed chan struct{}
	prefix string
}

func Connect(cfg NATSConfig, logger *slog.Logger) (*NATSPublisher, error) {
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = -1
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}

	closed := make(chan struct{})
	var closeOnce sync.Once

	opts := []nats.Option{
		nats.Name("tournament-accommodation"),
		nats.ClosedHandler(func(_ *nats.Conn) {
			closeOnce.Do(func() { close(closed) })
		}),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", slog.Any("error", err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", slog.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			logger.Error("NATS error", slog.Any("error", err))
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	p := newPublisher(nc, cfg.SubjectPrefix)
	p.nc = nc
	p.closed = closed
	return p, nil
}

func newPublisher(conn msgPublisher, prefix string) *NATSPublisher {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSPublisher{conn: conn, prefix: prefix}
}

func (p *NATSPublisher) Subject(eventType string) string {
	return p.prefix + "." + eventType
}

func (p *NATSPublisher) Publish(ctx context.Context, event models.AccommodationEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.Type, err)
	}

	msg := nats.NewMsg(p.Subject(event.Type))
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	msg.Header.Set("Accommodation-Id", strconv.Itoa(event.AccommodationID))
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Subject, err)
	}
	return nil
}

// Close дожидается окончания Drain (отправки буфера); по ctx соединение закрывается принудительно.
func (p *NATSPublisher) Close(ctx context.Context) error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
		return fmt.Errorf("drain NATS connection: %w", err)
	}

	select {
	case <-p.closed:
		return nil
	case <-ctx.Done():
		p.nc.Close()
		return fmt.Errorf("drain NATS connection: %w", ctx.Err())
	}
}
