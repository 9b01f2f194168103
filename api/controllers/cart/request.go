package cart

// AddItemRequest adds one variant to the cart.
type AddItemRequest struct {
	VariantID string `json:"variant_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// ChangeQuantityRequest sets the quantity of an existing cart line.
type ChangeQuantityRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// ApplyDiscountRequest attaches a discount code to the cart.
type ApplyDiscountRequest struct {
	Code string `json:"code" validate:"required,min=1,max=64"`
}
