// Package catalog serves read-only product browsing over the commerce
// backend.
package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/alexriley/storefront-sync/pkg/commerce"
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

// ErrProductNotFound maps a backend miss onto a coded not-found error.
var ErrProductNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "product not found")

// Product is a catalog entry as served to the client.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Handle      string          `json:"handle"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	MinPrice    decimal.Decimal `json:"min_price"`
	MaxPrice    decimal.Decimal `json:"max_price"`
	Currency    string          `json:"currency"`
	Variants    []Variant       `json:"variants"`
}

// Variant is one purchasable option of a product.
type Variant struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// Page is one page of products plus the cursor to continue from.
type Page struct {
	Products []Product `json:"products"`
	Cursor   string    `json:"cursor,omitempty"`
	HasNext  bool      `json:"has_next"`
}

// browser is the slice of the commerce client the service needs.
type browser interface {
	ListProducts(ctx context.Context, first int, after, search string) (*commerce.ProductPage, error)
	GetProduct(ctx context.Context, productID string) (*commerce.CatalogProduct, error)
}

type Service interface {
	ListProducts(ctx context.Context, first int, after, search string) (Page, error)
	GetProduct(ctx context.Context, productID string) (Product, error)
}

type service struct {
	client browser
}

func NewService(client browser) (Service, error) {
	if client == nil {
		return nil, errors.New("commerce client is required")
	}
	return &service{client: client}, nil
}

func productFromCatalog(p commerce.CatalogProduct) Product {
	product := Product{
		ID:          p.ID,
		Title:       p.Title,
		Handle:      p.Handle,
		Description: p.Description,
		MinPrice:    p.PriceRange.MinVariantPrice.Amount,
		MaxPrice:    p.PriceRange.MaxVariantPrice.Amount,
		Currency:    p.PriceRange.MinVariantPrice.CurrencyCode,
		Variants:    make([]Variant, 0, len(p.Variants.Nodes)),
	}
	if p.FeaturedImage != nil {
		product.Image = p.FeaturedImage.URL
	}
	for _, v := range p.Variants.Nodes {
		product.Variants = append(product.Variants, Variant{
			ID:        v.ID,
			Title:     v.Title,
			Price:     v.Price.Amount,
			Available: v.AvailableForSale,
		})
	}
	return product
}

func (s *service) ListProducts(ctx context.Context, first int, after, search string) (Page, error) {
	page, err := s.client.ListProducts(ctx, first, after, search)
	if err != nil {
		return Page{}, err
	}

	out := Page{
		Products: make([]Product, 0, len(page.Products)),
		Cursor:   page.EndCursor,
		HasNext:  page.HasNext,
	}
	for _, p := range page.Products {
		out.Products = append(out.Products, productFromCatalog(p))
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, productID string) (Product, error) {
	p, err := s.client.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, commerce.ErrProductNotFound) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return productFromCatalog(*p), nil
}
