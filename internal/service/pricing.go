package service

import (
	"fmt"

	"github.com/Marga-Ghale/ora-interior-backend/internal/repository"
	"github.com/Marga-Ghale/ora-interior-backend/internal/types"
	"github.com/shopspring/decimal"
)

// Totals are always derived from the product items and never stored.

type LinePricing struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	CustomPrice bool            `json:"customPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type DesignPricing struct {
	DesignID string          `json:"designId"`
	Title    string          `json:"title"`
	RoomType types.RoomType  `json:"roomType"`
	Lines    []LinePricing   `json:"lines"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type ProjectPricing struct {
	Designs    []DesignPricing `json:"designs"`
	ItemCount  int             `json:"itemCount"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// EffectiveUnitPrice is the custom price when set, otherwise the catalog price.
func EffectiveUnitPrice(item repository.ProductItem) decimal.Decimal {
	if item.CustomPrice != nil {
		return *item.CustomPrice
	}
	return item.Product.Price
}

func LineTotal(item repository.ProductItem) decimal.Decimal {
	return EffectiveUnitPrice(item).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

func DesignSubtotal(items []repository.ProductItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(LineTotal(item))
	}
	return total
}

func PriceProject(designs []repository.ProjectDesign) ProjectPricing {
	out := ProjectPricing{
		Designs:    make([]DesignPricing, 0, len(designs)),
		GrandTotal: decimal.Zero,
	}
	for _, d := range designs {
		dp := DesignPricing{
			DesignID: d.DesignID,
			Title:    d.Title,
			RoomType: d.RoomType,
			Lines:    make([]LinePricing, 0, len(d.Products)),
			Subtotal: decimal.Zero,
		}
		for _, item := range d.Products {
			line := LinePricing{
				ProductID:   item.Product.ID,
				Name:        item.Product.Name,
				Quantity:    item.Quantity,
				UnitPrice:   EffectiveUnitPrice(item),
				CustomPrice: item.CustomPrice != nil,
				LineTotal:   LineTotal(item),
			}
			dp.Lines = append(dp.Lines, line)
			dp.Subtotal = dp.Subtotal.Add(line.LineTotal)
			out.ItemCount++
		}
		out.Designs = append(out.Designs, dp)
		out.GrandTotal = out.GrandTotal.Add(dp.Subtotal)
	}
	return out
}

// ValidateProductItem enforces 1 <= quantity <= stock and a non-negative custom price.
func ValidateProductItem(item repository.ProductItem) error {
	verr := &ValidationError{}
	switch {
	case item.Quantity < 1:
		verr.add("quantity", "must be at least 1")
	case item.Quantity > item.Product.Stock:
		verr.add("quantity", fmt.Sprintf("only %d in stock", item.Product.Stock))
	}
	if item.CustomPrice != nil && item.CustomPrice.IsNegative() {
		verr.add("customPrice", "must not be negative")
	}
	if verr.empty() {
		return nil
	}
	return verr
}
