package jq

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type JobQueue struct {
	conn   *nats.Conn
	logger *zap.Logger
}

func New(url string, logger *zap.Logger) (*JobQueue, error) {
	jq := &JobQueue{
		conn:   nil,
		logger: logger.Named("jq"),
	}

	conn, err := nats.Connect(
		url,
		nats.ReconnectHandler(jq.reconnectHandler),
		nats.DisconnectErrHandler(jq.disconnectHandler),
	)
	if err != nil {
		return nil, err
	}

	jq.conn = conn

	return jq, nil
}

func (jq *JobQueue) reconnectHandler(nc *nats.Conn) {
	jq.logger.Info("got reconnected", zap.String("url", nc.ConnectedUrl()))
}

func (jq *JobQueue) disconnectHandler(_ *nats.Conn, err error) {
	jq.logger.Error("got disconnected", zap.Error(err))
}

// Produce publishes v as JSON on the given subject.
func (jq *JobQueue) Produce(subject string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return jq.conn.Publish(subject, body)
}

func (jq *JobQueue) Close() {
	if jq.conn != nil {
		jq.conn.Close()
	}
}
