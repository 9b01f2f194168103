package commerce

import (
	"context"
	"errors"
)

// ErrProductNotFound is returned when a product lookup matches nothing.
var ErrProductNotFound = errors.New("product not found")

// CatalogVariant is a purchasable variant listed under a catalog product.
type CatalogVariant struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	AvailableForSale bool   `json:"availableForSale"`
	Price            Money  `json:"price"`
}

// CatalogProduct is a product as rendered on browse and detail screens.
type CatalogProduct struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	Description   string `json:"description"`
	FeaturedImage *Image `json:"featuredImage"`
	PriceRange    struct {
		MinVariantPrice Money `json:"minVariantPrice"`
		MaxVariantPrice Money `json:"maxVariantPrice"`
	} `json:"priceRange"`
	Variants struct {
		Nodes []CatalogVariant `json:"nodes"`
	} `json:"variants"`
}

// ProductPage is one page of catalog products plus the cursor to continue from.
type ProductPage struct {
	Products  []CatalogProduct
	EndCursor string
	HasNext   bool
}

const productFragment = `fragment ProductFields on Product {
  id
  title
  handle
  description
  featuredImage { url altText }
  priceRange {
    minVariantPrice { amount currencyCode }
    maxVariantPrice { amount currencyCode }
  }
  variants(first: 25) {
    nodes {
      id
      title
      availableForSale
      price { amount currencyCode }
    }
  }
}`

const listProductsQuery = `query ListProducts($first: Int!, $after: String, $query: String) {
  products(first: $first, after: $after, query: $query) {
    nodes { ...ProductFields }
    pageInfo { hasNextPage endCursor }
  }
}
` + productFragment

const getProductQuery = `query GetProduct($id: ID!) {
  product(id: $id) { ...ProductFields }
}
` + productFragment

// ListProducts fetches one page of products. after and search may be empty.
func (c *Client) ListProducts(ctx context.Context, first int, after, search string) (*ProductPage, error) {
	if first <= 0 {
		first = 20
	}

	vars := map[string]any{"first": first}
	if after != "" {
		vars["after"] = after
	}
	if search != "" {
		vars["query"] = search
	}

	var out struct {
		Products struct {
			Nodes    []CatalogProduct `json:"nodes"`
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
		} `json:"products"`
	}
	if err := c.execute(ctx, "", listProductsQuery, vars, &out); err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:  out.Products.Nodes,
		EndCursor: out.Products.PageInfo.EndCursor,
		HasNext:   out.Products.PageInfo.HasNextPage,
	}, nil
}

// GetProduct fetches one product by ID. Returns ErrProductNotFound when the
// backend reports no product for that ID.
func (c *Client) GetProduct(ctx context.Context, productID string) (*CatalogProduct, error) {
	var out struct {
		Product *CatalogProduct `json:"product"`
	}
	vars := map[string]any{"id": productID}
	if err := c.execute(ctx, "", getProductQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, ErrProductNotFound
	}
	return out.Product, nil
}
