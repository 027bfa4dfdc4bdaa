package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemSubtotal(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    string
		want     string
	}{
		{"simple", 2, "100.50", "201.00"},
		{"single unit", 1, "99.99", "99.99"},
		{"zero quantity", 0, "10.00", "0"},
		{"cent precision", 3, "0.10", "0.30"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			item := Item{
				ProductID:   uuid.New(),
				ProductName: "Product",
				Quantity:    tc.quantity,
				UnitPrice:   decimal.RequireFromString(tc.price),
			}
			assert.True(t, item.Subtotal().Equal(decimal.RequireFromString(tc.want)),
				"got %s, want %s", item.Subtotal(), tc.want)
		})
	}
}

func TestItemDocRoundTrip(t *testing.T) {
	item := Item{
		ProductID:   uuid.New(),
		ProductName: "Keyboard",
		Quantity:    2,
		UnitPrice:   decimal.RequireFromString("100.50"),
	}

	doc := item.Doc()
	assert.Equal(t, item.ProductID.String(), doc.ProductID)
	assert.Equal(t, "Keyboard", doc.ProductName)
	assert.Equal(t, 2, doc.Quantity)
	assert.Equal(t, "100.50", doc.UnitPrice)
	assert.Equal(t, "201.00", doc.Subtotal)

	restored, err := ItemFromDoc(doc)
	require.NoError(t, err)
	assert.Equal(t, item.ProductID, restored.ProductID)
	assert.Equal(t, item.ProductName, restored.ProductName)
	assert.Equal(t, item.Quantity, restored.Quantity)
	assert.True(t, item.UnitPrice.Equal(restored.UnitPrice))
}

func TestItemFromDocRejectsBadInput(t *testing.T) {
	_, err := ItemFromDoc(ItemDoc{ProductID: "not-a-uuid", UnitPrice: "1.00"})
	assert.Error(t, err)

	_, err = ItemFromDoc(ItemDoc{ProductID: uuid.NewString(), UnitPrice: "not-a-number"})
	assert.Error(t, err)
}
