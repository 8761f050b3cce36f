package orders

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"vegorder/internal/models"
)

const moneyPlaces = models.MoneyPlaces

type orderLine struct {
	ProductID int64
	Quantity  decimal.Decimal
}

type pricedOrder struct {
	Items       []models.OrderItem
	TotalAmount decimal.Decimal
	TotalItems  decimal.Decimal
}

// mergeLines folds repeated product ids into one line at the position of
// their first occurrence, summing quantities.
func mergeLines(items []CreateOrderItemRequest) []orderLine {
	lines := make([]orderLine, 0, len(items))
	index := make(map[int64]int, len(items))

	for _, item := range items {
		if i, ok := index[item.ProductID]; ok {
			lines[i].Quantity = lines[i].Quantity.Add(item.Quantity)
			continue
		}
		index[item.ProductID] = len(lines)
		lines = append(lines, orderLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return lines
}

func lineProductIDs(lines []orderLine) []int64 {
	return lo.Map(lines, func(line orderLine, _ int) int64 {
		return line.ProductID
	})
}

// priceLines prices every line from the product records. Existence is
// checked for all lines before availability, and availability for all
// lines before any arithmetic.
func priceLines(lines []orderLine, products []models.Product) (pricedOrder, error) {
	byID := lo.KeyBy(products, func(p models.Product) int64 {
		return p.ID
	})

	missing := lo.FilterMap(lines, func(line orderLine, _ int) (int64, bool) {
		_, ok := byID[line.ProductID]
		return line.ProductID, !ok
	})
	if len(missing) > 0 {
		return pricedOrder{}, ProductNotFoundError{ProductIDs: missing}
	}

	for _, line := range lines {
		product := byID[line.ProductID]
		if !product.IsAvailable {
			return pricedOrder{}, ProductUnavailableError{ProductID: product.ID, Name: product.Name}
		}
	}

	priced := pricedOrder{
		Items:       make([]models.OrderItem, 0, len(lines)),
		TotalAmount: decimal.Zero,
		TotalItems:  decimal.Zero,
	}
	for _, line := range lines {
		product := byID[line.ProductID]
		lineTotal := product.Price.Mul(line.Quantity).Round(moneyPlaces)

		priced.Items = append(priced.Items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Unit:        product.Unit,
			Price:       product.Price,
			Quantity:    line.Quantity,
			TotalPrice:  lineTotal,
		})
		priced.TotalAmount = priced.TotalAmount.Add(lineTotal)
		priced.TotalItems = priced.TotalItems.Add(line.Quantity)
	}

	return priced, nil
}
