package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/prelovedguru/backend/internal/domain"
)

type fakeConn struct {
	subjects []string
	data     [][]byte
	err      error
	closed   bool
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.err != nil {
		return c.err
	}
	c.subjects = append(c.subjects, subject)
	c.data = append(c.data, data)
	return nil
}

func (c *fakeConn) Close() { c.closed = true }

var (
	_ domain.EventPublisher = (*NATSPublisher)(nil)
	_ domain.EventPublisher = NoopPublisher{}
)

func TestNATSPublisher_Publish(t *testing.T) {
	nc := &fakeConn{}
	p := &NATSPublisher{nc: nc, logger: nopLogger()}

	err := p.Publish(context.Background(), domain.SubjectMatchDeleted, map[string]string{
		"matchId":    "match-wish1-0",
		"wishlistId": "wish1",
	})

	require.NoError(t, err)
	require.Len(t, nc.subjects, 1)
	assert.Equal(t, domain.SubjectMatchDeleted, nc.subjects[0])
	assert.JSONEq(t, `{"matchId":"match-wish1-0","wishlistId":"wish1"}`, string(nc.data[0]))

	p.Close()
	assert.True(t, nc.closed)
}

func TestNATSPublisher_PublishError(t *testing.T) {
	p := &NATSPublisher{nc: &fakeConn{err: errors.New("nats: connection closed")}, logger: nopLogger()}

	err := p.Publish(context.Background(), domain.SubjectInventoryDeleted, map[string]string{"id": "m100"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.SubjectInventoryDeleted)
}

func TestNATSPublisher_MarshalError(t *testing.T) {
	nc := &fakeConn{}
	p := &NATSPublisher{nc: nc, logger: nopLogger()}

	err := p.Publish(context.Background(), domain.SubjectInventoryAdded, make(chan int))

	assert.Error(t, err)
	assert.Empty(t, nc.subjects)
}

func TestNATSPublisher_CancelledContext(t *testing.T) {
	nc := &fakeConn{}
	p := &NATSPublisher{nc: nc, logger: nopLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Publish(ctx, domain.SubjectInventoryAdded, domain.Product{ID: "new-item-1"})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, nc.subjects)
}

func TestNewNATSPublisher_ConnectFailure(t *testing.T) {
	p, err := NewNATSPublisher(NATSConfig{URL: "nats://127.0.0.1:1", ConnectTimeout: 100 * time.Millisecond}, nil)

	assert.Nil(t, p)
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p NoopPublisher
	assert.NoError(t, p.Publish(context.Background(), domain.SubjectMatchDeleted, nil))
	p.Close()
}

func nopLogger() *zap.Logger { return zap.NewNop() }
