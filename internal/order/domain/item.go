package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is an immutable order line. Quantity and price signs are not
// enforced here; the API layer rejects non-positive input before it
// reaches the domain.
type Item struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Subtotal is UnitPrice × Quantity, recomputed on demand.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemDoc is the stable projection of an item for transport and
// storage. Field names are part of the wire contract.
type ItemDoc struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	Subtotal    string `json:"subtotal"`
}

// Doc builds the item projection, all amounts as decimal strings.
func (i Item) Doc() ItemDoc {
	return ItemDoc{
		ProductID:   i.ProductID.String(),
		ProductName: i.ProductName,
		Quantity:    i.Quantity,
		UnitPrice:   i.UnitPrice.String(),
		Subtotal:    i.Subtotal().String(),
	}
}

// ItemFromDoc rebuilds an Item from its projection.
func ItemFromDoc(doc ItemDoc) (Item, error) {
	productID, err := uuid.Parse(doc.ProductID)
	if err != nil {
		return Item{}, err
	}
	price, err := decimal.NewFromString(doc.UnitPrice)
	if err != nil {
		return Item{}, err
	}
	return Item{
		ProductID:   productID,
		ProductName: doc.ProductName,
		Quantity:    doc.Quantity,
		UnitPrice:   price,
	}, nil
}
