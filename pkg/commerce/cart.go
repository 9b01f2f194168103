package commerce

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

// ErrCartNotFound is returned when the backend no longer knows the cart ID.
var ErrCartNotFound = errors.New("cart not found")

// Money is a decimal amount with its ISO currency code.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

// DiscountCode is a code attached to a cart. Codes the backend rejected
// stay attached with Applicable false.
type DiscountCode struct {
	Code       string `json:"code"`
	Applicable bool   `json:"applicable"`
}

// DiscountAllocation is a per-line discount amount.
type DiscountAllocation struct {
	DiscountedAmount Money `json:"discountedAmount"`
}

// Image is a hosted product image.
type Image struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// Product is the subset of product fields a cart line needs.
type Product struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Handle        string `json:"handle"`
	ProductType   string `json:"productType"`
	Vendor        string `json:"vendor"`
	FeaturedImage *Image `json:"featuredImage"`
}

// Variant is the purchasable unit referenced by a cart line.
type Variant struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Price   Money   `json:"price"`
	Product Product `json:"product"`
}

// CartLine is one line of a cart as reported by the backend.
type CartLine struct {
	ID                  string               `json:"id"`
	Quantity            int                  `json:"quantity"`
	Merchandise         Variant              `json:"merchandise"`
	DiscountAllocations []DiscountAllocation `json:"discountAllocations"`
	Cost                struct {
		TotalAmount Money `json:"totalAmount"`
	} `json:"cost"`
}

// CartCost carries the cart-level totals.
type CartCost struct {
	SubtotalAmount Money `json:"subtotalAmount"`
	TotalAmount    Money `json:"totalAmount"`
}

// Cart is the backend's authoritative cart state after a query or mutation.
type Cart struct {
	ID            string         `json:"id"`
	CheckoutURL   string         `json:"checkoutUrl"`
	TotalQuantity int            `json:"totalQuantity"`
	Cost          CartCost       `json:"cost"`
	DiscountCodes []DiscountCode `json:"discountCodes"`
	Lines         struct {
		Nodes []CartLine `json:"nodes"`
	} `json:"lines"`
}

// TotalDiscount sums every per-line discount allocation on the cart.
func (c *Cart) TotalDiscount() decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, line := range c.Lines.Nodes {
		for _, alloc := range line.DiscountAllocations {
			total = total.Add(alloc.DiscountedAmount.Amount)
		}
	}
	return total
}

// AppliedCode returns the first discount code the backend accepted.
func (c *Cart) AppliedCode() string {
	if c == nil {
		return ""
	}
	for _, dc := range c.DiscountCodes {
		if dc.Applicable {
			return dc.Code
		}
	}
	return ""
}

const cartFragment = `fragment CartFields on Cart {
  id
  checkoutUrl
  totalQuantity
  cost {
    subtotalAmount { amount currencyCode }
    totalAmount { amount currencyCode }
  }
  discountCodes { code applicable }
  lines(first: $lineCount) {
    nodes {
      id
      quantity
      cost { totalAmount { amount currencyCode } }
      discountAllocations { discountedAmount { amount currencyCode } }
      merchandise {
        ... on ProductVariant {
          id
          title
          price { amount currencyCode }
          product {
            id
            title
            handle
            productType
            vendor
            featuredImage { url altText }
          }
        }
      }
    }
  }
}`

const fetchCartQuery = `query FetchCart($cartId: ID!, $lineCount: Int!) {
  cart(id: $cartId) { ...CartFields }
}
` + cartFragment

const createCartMutation = `mutation CreateCart($input: CartInput!, $lineCount: Int!) {
  cartCreate(input: $input) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFragment

const addLinesMutation = `mutation AddCartLines($cartId: ID!, $lines: [CartLineInput!]!, $lineCount: Int!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFragment

const removeLinesMutation = `mutation RemoveCartLines($cartId: ID!, $lineIds: [ID!]!, $lineCount: Int!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFragment

const updateLinesMutation = `mutation UpdateCartLines($cartId: ID!, $lines: [CartLineUpdateInput!]!, $lineCount: Int!) {
  cartLinesUpdate(cartId: $cartId, lines: $lines) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFragment

const updateDiscountCodesMutation = `mutation UpdateCartDiscountCodes($cartId: ID!, $codes: [String!]!, $lineCount: Int!) {
  cartDiscountCodesUpdate(cartId: $cartId, discountCodes: $codes) {
    cart { ...CartFields }
    userErrors { field message }
  }
}
` + cartFragment

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

type mutationResult struct {
	Cart       *Cart       `json:"cart"`
	UserErrors []userError `json:"userErrors"`
}

func (r *mutationResult) cartOrError(operation string) (*Cart, error) {
	if r == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("%s returned no payload", operation))
	}
	if len(r.UserErrors) > 0 {
		return nil, pkgerrors.Passthrough(pkgerrors.CodeDependency, errors.New(r.UserErrors[0].Message))
	}
	if r.Cart == nil {
		return nil, ErrCartNotFound
	}
	return r.Cart, nil
}

// FetchCart looks up an existing cart by ID. Returns ErrCartNotFound when
// the backend reports no cart for that ID.
func (c *Client) FetchCart(ctx context.Context, buyerToken, cartID string) (*Cart, error) {
	var out struct {
		Cart *Cart `json:"cart"`
	}
	vars := map[string]any{"cartId": cartID, "lineCount": c.linePageSize}
	if err := c.execute(ctx, buyerToken, fetchCartQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Cart == nil {
		return nil, ErrCartNotFound
	}
	return out.Cart, nil
}

// CreateCart opens a fresh cart. When a buyer token and email are supplied
// the cart is bound to that buyer so checkout is pre-authenticated.
func (c *Client) CreateCart(ctx context.Context, buyerToken, email string) (*Cart, error) {
	input := map[string]any{}
	if buyerToken != "" || email != "" {
		identity := map[string]any{}
		if email != "" {
			identity["email"] = email
		}
		if buyerToken != "" {
			identity["customerAccessToken"] = buyerToken
		}
		input["buyerIdentity"] = identity
	}

	var out struct {
		CartCreate mutationResult `json:"cartCreate"`
	}
	vars := map[string]any{"input": input, "lineCount": c.linePageSize}
	if err := c.execute(ctx, buyerToken, createCartMutation, vars, &out); err != nil {
		return nil, err
	}
	return out.CartCreate.cartOrError("cartCreate")
}

// AddLine appends a variant to the cart and returns the updated cart.
func (c *Client) AddLine(ctx context.Context, buyerToken, cartID, variantID string, quantity int) (*Cart, error) {
	var out struct {
		CartLinesAdd mutationResult `json:"cartLinesAdd"`
	}
	vars := map[string]any{
		"cartId":    cartID,
		"lines":     []map[string]any{{"merchandiseId": variantID, "quantity": quantity}},
		"lineCount": c.linePageSize,
	}
	if err := c.execute(ctx, buyerToken, addLinesMutation, vars, &out); err != nil {
		return nil, err
	}
	return out.CartLinesAdd.cartOrError("cartLinesAdd")
}

// RemoveLine deletes one line from the cart and returns the updated cart.
func (c *Client) RemoveLine(ctx context.Context, buyerToken, cartID, lineID string) (*Cart, error) {
	var out struct {
		CartLinesRemove mutationResult `json:"cartLinesRemove"`
	}
	vars := map[string]any{
		"cartId":    cartID,
		"lineIds":   []string{lineID},
		"lineCount": c.linePageSize,
	}
	if err := c.execute(ctx, buyerToken, removeLinesMutation, vars, &out); err != nil {
		return nil, err
	}
	return out.CartLinesRemove.cartOrError("cartLinesRemove")
}

// UpdateLineQuantity sets the quantity on one line and returns the updated cart.
func (c *Client) UpdateLineQuantity(ctx context.Context, buyerToken, cartID, lineID string, quantity int) (*Cart, error) {
	var out struct {
		CartLinesUpdate mutationResult `json:"cartLinesUpdate"`
	}
	vars := map[string]any{
		"cartId":    cartID,
		"lines":     []map[string]any{{"id": lineID, "quantity": quantity}},
		"lineCount": c.linePageSize,
	}
	if err := c.execute(ctx, buyerToken, updateLinesMutation, vars, &out); err != nil {
		return nil, err
	}
	return out.CartLinesUpdate.cartOrError("cartLinesUpdate")
}

// ApplyDiscountCode replaces the cart's discount codes with the given code.
func (c *Client) ApplyDiscountCode(ctx context.Context, buyerToken, cartID, code string) (*Cart, error) {
	var out struct {
		CartDiscountCodesUpdate mutationResult `json:"cartDiscountCodesUpdate"`
	}
	vars := map[string]any{
		"cartId":    cartID,
		"codes":     []string{code},
		"lineCount": c.linePageSize,
	}
	if err := c.execute(ctx, buyerToken, updateDiscountCodesMutation, vars, &out); err != nil {
		return nil, err
	}
	return out.CartDiscountCodesUpdate.cartOrError("cartDiscountCodesUpdate")
}
