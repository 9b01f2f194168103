package cart

import (
	"context"
	"errors"

	"github.com/alexriley/storefront-sync/pkg/commerce"
)

// CommerceGateway adapts the commerce GraphQL client to the synchronizer's
// Gateway contract, flattening backend carts into snapshots.
type CommerceGateway struct {
	client *commerce.Client
}

func NewCommerceGateway(client *commerce.Client) (*CommerceGateway, error) {
	if client == nil {
		return nil, errors.New("commerce client is required")
	}
	return &CommerceGateway{client: client}, nil
}

func snapshotFromCart(c *commerce.Cart) *Snapshot {
	if c == nil {
		return nil
	}

	snapshot := &Snapshot{
		ID:          c.ID,
		CheckoutURL: c.CheckoutURL,
		Subtotal:    c.Cost.SubtotalAmount.Amount,
		Total:       c.Cost.TotalAmount.Amount,
		Discount:    c.TotalDiscount(),
		AppliedCode: c.AppliedCode(),
		Lines:       make([]LineItem, 0, len(c.Lines.Nodes)),
	}

	for _, line := range c.Lines.Nodes {
		item := LineItem{
			LineID:    line.ID,
			ProductID: line.Merchandise.Product.ID,
			VariantID: line.Merchandise.ID,
			Quantity:  line.Quantity,
			Price:     line.Merchandise.Price.Amount,
			Title:     line.Merchandise.Product.Title,
			Category:  line.Merchandise.Product.ProductType,
			Brand:     line.Merchandise.Product.Vendor,
		}
		if img := line.Merchandise.Product.FeaturedImage; img != nil {
			item.Image = img.URL
		}
		snapshot.Lines = append(snapshot.Lines, item)
	}

	return snapshot
}

func (g *CommerceGateway) FetchCart(ctx context.Context, token, cartID string) (*Snapshot, error) {
	c, err := g.client.FetchCart(ctx, token, cartID)
	if err != nil {
		return nil, err
	}
	return snapshotFromCart(c), nil
}

func (g *CommerceGateway) CreateCart(ctx context.Context, token, email string) (*Snapshot, error) {
	c, err := g.client.CreateCart(ctx, token, email)
	if err != nil {
		return nil, err
	}
	return snapshotFromCart(c), nil
}

func (g *CommerceGateway) AddLine(ctx context.Context, token, cartID, variantID string, quantity int) (*Snapshot, error) {
	c, err := g.client.AddLine(ctx, token, cartID, variantID, quantity)
	if err != nil {
		return nil, err
	}
	return snapshotFromCart(c), nil
}

func (g *CommerceGateway) RemoveLine(ctx context.Context, token, cartID, lineID string) (*Snapshot, error) {
	c, err := g.client.RemoveLine(ctx, token, cartID, lineID)
	if err != nil {
		return nil, err
	}
	return snapshotFromCart(c), nil
}

func (g *CommerceGateway) UpdateLineQuantity(ctx context.Context, token, cartID, lineID string, quantity int) (*Snapshot, error) {
	c, err := g.client.UpdateLineQuantity(ctx, token, cartID, lineID, quantity)
	if err != nil {
		return nil, err
	}
	return snapshotFromCart(c), nil
}

func (g *CommerceGateway) ApplyDiscountCode(ctx context.Context, token, cartID, code string) (*Snapshot, error) {
	c, err := g.client.ApplyDiscountCode(ctx, token, cartID, code)
	if err != nil {
		return nil, err
	}
	return snapshotFromCart(c), nil
}
