package commerce

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/alexriley/storefront-sync/pkg/errors"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc) *Client {
	t.Helper()
	client, err := NewClient("http://commerce.test/graphql", "sf-key",
		WithHTTPClient(&http.Client{Transport: rt}),
		WithLinePageSize(10),
	)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresEndpoint(t *testing.T) {
	if _, err := NewClient("   ", "key"); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}

func TestFetchCartRequest(t *testing.T) {
	respBody := `{"data":{"cart":{
		"id":"gid://cart/1",
		"checkoutUrl":"https://shop.test/checkout/1",
		"totalQuantity":3,
		"cost":{"subtotalAmount":{"amount":"30.00","currencyCode":"USD"},"totalAmount":{"amount":"27.00","currencyCode":"USD"}},
		"discountCodes":[{"code":"SAVE10","applicable":true},{"code":"EXPIRED","applicable":false}],
		"lines":{"nodes":[{
			"id":"gid://line/1",
			"quantity":3,
			"cost":{"totalAmount":{"amount":"27.00","currencyCode":"USD"}},
			"discountAllocations":[{"discountedAmount":{"amount":"3.00","currencyCode":"USD"}}],
			"merchandise":{"id":"gid://variant/9","title":"Small","price":{"amount":"10.00","currencyCode":"USD"},
				"product":{"id":"gid://product/5","title":"Tee","handle":"tee","featuredImage":{"url":"https://img.test/tee.png","altText":"Tee"}}}
		}]}
	}}}`

	var capturedHeaders http.Header
	var capturedVars map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		capturedHeaders = req.Header.Clone()
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var payload struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		if !strings.Contains(payload.Query, "cart(id: $cartId)") {
			t.Fatalf("unexpected query %q", payload.Query)
		}
		capturedVars = payload.Variables
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client := newTestClient(t, rt)
	cart, err := client.FetchCart(context.Background(), "buyer-token", "gid://cart/1")
	if err != nil {
		t.Fatalf("fetch cart: %v", err)
	}

	if capturedHeaders.Get(accessTokenHeader) != "sf-key" {
		t.Fatal("storefront key header missing")
	}
	if capturedHeaders.Get("Authorization") != "Bearer buyer-token" {
		t.Fatalf("unexpected authorization header %q", capturedHeaders.Get("Authorization"))
	}
	if capturedVars["cartId"] != "gid://cart/1" {
		t.Fatalf("unexpected cartId %v", capturedVars["cartId"])
	}
	if capturedVars["lineCount"] != float64(10) {
		t.Fatalf("unexpected lineCount %v", capturedVars["lineCount"])
	}

	if cart.ID != "gid://cart/1" || cart.TotalQuantity != 3 {
		t.Fatalf("unexpected cart %+v", cart)
	}
	if len(cart.Lines.Nodes) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Lines.Nodes))
	}
	line := cart.Lines.Nodes[0]
	if line.Merchandise.ID != "gid://variant/9" || line.Merchandise.Product.Title != "Tee" {
		t.Fatalf("unexpected line merchandise %+v", line.Merchandise)
	}
	if got := cart.TotalDiscount().String(); got != "3" {
		t.Fatalf("unexpected total discount %s", got)
	}
	if cart.AppliedCode() != "SAVE10" {
		t.Fatalf("unexpected applied code %q", cart.AppliedCode())
	}
}

func TestFetchCartMissing(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"cart":null}}`), nil
	})

	client := newTestClient(t, rt)
	if _, err := client.FetchCart(context.Background(), "", "gid://cart/gone"); err != ErrCartNotFound {
		t.Fatalf("expected ErrCartNotFound, got %v", err)
	}
}

func TestCreateCartBuyerIdentity(t *testing.T) {
	var capturedVars map[string]any

	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		bodyBytes, _ := io.ReadAll(req.Body)
		var payload struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		capturedVars = payload.Variables
		return jsonResponse(http.StatusOK, `{"data":{"cartCreate":{"cart":{"id":"gid://cart/new","lines":{"nodes":[]}},"userErrors":[]}}}`), nil
	})

	client := newTestClient(t, rt)
	cart, err := client.CreateCart(context.Background(), "buyer-token", "user@shop.test")
	if err != nil {
		t.Fatalf("create cart: %v", err)
	}
	if cart.ID != "gid://cart/new" {
		t.Fatalf("unexpected cart id %q", cart.ID)
	}

	input, ok := capturedVars["input"].(map[string]any)
	if !ok {
		t.Fatalf("missing input variable: %v", capturedVars)
	}
	identity, ok := input["buyerIdentity"].(map[string]any)
	if !ok {
		t.Fatalf("missing buyerIdentity: %v", input)
	}
	if identity["email"] != "user@shop.test" || identity["customerAccessToken"] != "buyer-token" {
		t.Fatalf("unexpected buyer identity %v", identity)
	}
}

func TestMutationUserErrorPassthrough(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK,
			`{"data":{"cartLinesAdd":{"cart":null,"userErrors":[{"field":["lines"],"message":"Variant is sold out"}]}}}`), nil
	})

	client := newTestClient(t, rt)
	_, err := client.AddLine(context.Background(), "", "gid://cart/1", "gid://variant/9", 1)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Message() != "Variant is sold out" {
		t.Fatalf("expected user error message passed through, got %v", err)
	}
}

func TestGraphQLErrorPassthrough(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":null,"errors":[{"message":"Throttled"}]}`), nil
	})

	client := newTestClient(t, rt)
	_, err := client.FetchCart(context.Background(), "", "gid://cart/1")
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Message() != "Throttled" {
		t.Fatalf("expected graphql error passed through, got %v", err)
	}
}

func TestNonOKStatus(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, `upstream unavailable`), nil
	})

	client := newTestClient(t, rt)
	_, err := client.FetchCart(context.Background(), "", "gid://cart/1")
	if err == nil {
		t.Fatal("expected error")
	}
	if !pkgerrors.Is(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency code, got %v", err)
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestListProducts(t *testing.T) {
	respBody := `{"data":{"products":{
		"nodes":[{"id":"gid://product/5","title":"Tee","handle":"tee","description":"A tee",
			"priceRange":{"minVariantPrice":{"amount":"10.00","currencyCode":"USD"},"maxVariantPrice":{"amount":"12.00","currencyCode":"USD"}},
			"variants":{"nodes":[{"id":"gid://variant/9","title":"Small","availableForSale":true,"price":{"amount":"10.00","currencyCode":"USD"}}]}}],
		"pageInfo":{"hasNextPage":true,"endCursor":"cursor-1"}
	}}}`

	var capturedVars map[string]any
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		bodyBytes, _ := io.ReadAll(req.Body)
		var payload struct {
			Variables map[string]any `json:"variables"`
		}
		if err := json.Unmarshal(bodyBytes, &payload); err != nil {
			t.Fatalf("unmarshal request body: %v", err)
		}
		capturedVars = payload.Variables
		return jsonResponse(http.StatusOK, respBody), nil
	})

	client := newTestClient(t, rt)
	page, err := client.ListProducts(context.Background(), 20, "cursor-0", "tee")
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if capturedVars["after"] != "cursor-0" || capturedVars["query"] != "tee" {
		t.Fatalf("unexpected variables %v", capturedVars)
	}
	if len(page.Products) != 1 || page.Products[0].Handle != "tee" {
		t.Fatalf("unexpected products %+v", page.Products)
	}
	if !page.HasNext || page.EndCursor != "cursor-1" {
		t.Fatalf("unexpected page info %+v", page)
	}
}

func TestGetProductMissing(t *testing.T) {
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"data":{"product":null}}`), nil
	})

	client := newTestClient(t, rt)
	if _, err := client.GetProduct(context.Background(), "gid://product/404"); err != ErrProductNotFound {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}
