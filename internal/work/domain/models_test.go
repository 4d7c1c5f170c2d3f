package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBillableQuantity(t *testing.T) {
	item := WorkItem{
		CompletedQuantity: 10,
		BilledQuantity:    2,
		PaidQuantity:      1,
	}
	assert.Equal(t, 7.0, item.BillableQuantity())
}

func TestBillableQuantityClampsAtZero(t *testing.T) {
	// Completed work was revised downward after invoicing.
	item := WorkItem{
		CompletedQuantity: 3,
		BilledQuantity:    4,
		PaidQuantity:      1,
	}
	assert.Equal(t, 0.0, item.BillableQuantity())
}
