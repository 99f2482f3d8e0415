package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	open := []Status{StatusPending, StatusProcessing, StatusShipped}
	closed := []Status{StatusDelivered, StatusCancelled}

	for _, s := range open {
		assert.True(t, s.IsValid())
		assert.True(t, s.IsOpen(), s)
	}
	for _, s := range closed {
		assert.True(t, s.IsValid())
		assert.False(t, s.IsOpen(), s)
	}
	assert.False(t, Status("returned").IsValid())
}

func TestOrder_ItemCount(t *testing.T) {
	o := &Order{Items: []OrderItem{{Quantity: 2}, {Quantity: 3}}}
	assert.Equal(t, 5, o.ItemCount())
	assert.Equal(t, 0, (&Order{}).ItemCount())
}
