package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/alexriley/storefront-sync/pkg/commerce"
	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

type stubBrowser struct {
	page       *commerce.ProductPage
	pageErr    error
	product    *commerce.CatalogProduct
	productErr error
}

func (s *stubBrowser) ListProducts(_ context.Context, _ int, _, _ string) (*commerce.ProductPage, error) {
	return s.page, s.pageErr
}

func (s *stubBrowser) GetProduct(_ context.Context, _ string) (*commerce.CatalogProduct, error) {
	return s.product, s.productErr
}

func sampleCatalogProduct() commerce.CatalogProduct {
	p := commerce.CatalogProduct{
		ID:          "gid://product/5",
		Title:       "Tee",
		Handle:      "tee",
		Description: "A tee",
		FeaturedImage: &commerce.Image{
			URL: "https://img.test/tee.png",
		},
	}
	p.PriceRange.MinVariantPrice = commerce.Money{Amount: decimal.NewFromInt(10), CurrencyCode: "USD"}
	p.PriceRange.MaxVariantPrice = commerce.Money{Amount: decimal.NewFromInt(12), CurrencyCode: "USD"}
	p.Variants.Nodes = []commerce.CatalogVariant{{
		ID:               "gid://variant/9",
		Title:            "Small",
		AvailableForSale: true,
		Price:            commerce.Money{Amount: decimal.NewFromInt(10), CurrencyCode: "USD"},
	}}
	return p
}

func TestListProducts(t *testing.T) {
	browser := &stubBrowser{page: &commerce.ProductPage{
		Products:  []commerce.CatalogProduct{sampleCatalogProduct()},
		EndCursor: "cursor-1",
		HasNext:   true,
	}}
	svc, err := NewService(browser)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	page, err := svc.ListProducts(context.Background(), 20, "", "")
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(page.Products) != 1 || !page.HasNext || page.Cursor != "cursor-1" {
		t.Fatalf("unexpected page %+v", page)
	}
	product := page.Products[0]
	if product.Title != "Tee" || product.Image != "https://img.test/tee.png" || product.Currency != "USD" {
		t.Fatalf("unexpected product %+v", product)
	}
	if len(product.Variants) != 1 || !product.Variants[0].Available {
		t.Fatalf("unexpected variants %+v", product.Variants)
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc, err := NewService(&stubBrowser{productErr: commerce.ErrProductNotFound})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), "gid://product/404")
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not-found code, got %v", err)
	}
}

func TestGetProductTransportError(t *testing.T) {
	boom := errors.New("upstream down")
	svc, _ := NewService(&stubBrowser{productErr: boom})

	_, err := svc.GetProduct(context.Background(), "gid://product/5")
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error passed through, got %v", err)
	}
}
