package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNop_Publish(t *testing.T) {
	var p Publisher = Nop{}
	assert.NoError(t, p.Publish(context.Background(), "atm.withdrawals.approved", []byte(`{}`)))
}

func TestNatsPublisher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// the connection is never touched once the context is done
	p := NewNatsPublisher(nil)
	assert.ErrorIs(t, p.Publish(ctx, "atm.withdrawals.approved", nil), context.Canceled)
}
