// Package api is the HTTP/JSON client for the remote commerce backend.
// Every response arrives in a {success, data} envelope; prices travel as
// floats on the wire and become decimals at this boundary.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/fjod/go_storefront/internal/domain"
)

// TokenSource supplies the current bearer token, or "" when the session is
// anonymous. Token issuance lives with the auth collaborator, not here.
type TokenSource func() string

type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

func NewClient(baseURL string, timeout time.Duration, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		token: token,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message,omitempty"`
}

type cartItemDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	ImageRef  string  `json:"imageRef"`
	Quantity  int     `json:"quantity"`
}

type cartDTO struct {
	Items []cartItemDTO `json:"items"`
}

type wishlistItemDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	ImageRef  string  `json:"imageRef"`
}

type wishlistDTO struct {
	Items []wishlistItemDTO `json:"items"`
}

type orderLineItemDTO struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
}

type orderTotalsDTO struct {
	Subtotal float64 `json:"subtotal"`
	Discount float64 `json:"discount"`
	Tax      float64 `json:"tax"`
	Shipping float64 `json:"shipping"`
	Total    float64 `json:"total"`
}

type orderDTO struct {
	OrderNumber     string             `json:"orderNumber"`
	Status          string             `json:"status"`
	Items           []orderLineItemDTO `json:"items"`
	Totals          orderTotalsDTO     `json:"totals"`
	ShippingAddress domain.Address     `json:"shippingAddress"`
	Payment         domain.Payment     `json:"payment"`
	CreatedAt       time.Time          `json:"createdAt"`
}

func (c *Client) FetchCart(ctx context.Context) (domain.CartSnapshot, error) {
	var dto cartDTO
	if err := c.call(ctx, http.MethodGet, "/cart", nil, &dto); err != nil {
		return domain.CartSnapshot{}, err
	}
	cart := domain.NewCart()
	for _, item := range dto.Items {
		cart.Add(domain.CartItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
			ImageRef:  item.ImageRef,
		}, item.Quantity)
	}
	return cart.Snapshot(), nil
}

func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) error {
	body := map[string]interface{}{"productId": productID, "quantity": quantity}
	return c.call(ctx, http.MethodPost, "/cart/add", body, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) error {
	body := map[string]interface{}{"productId": productID}
	return c.call(ctx, http.MethodPost, "/cart/remove", body, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	body := map[string]interface{}{"productId": productID, "quantity": quantity}
	return c.call(ctx, http.MethodPut, "/cart/update", body, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}

func (c *Client) FetchWishlist(ctx context.Context) (domain.WishlistSnapshot, error) {
	var dto wishlistDTO
	if err := c.call(ctx, http.MethodGet, "/wishlist", nil, &dto); err != nil {
		return domain.WishlistSnapshot{}, err
	}
	wishlist := domain.NewWishlist()
	for _, item := range dto.Items {
		wishlist.Add(domain.WishlistItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
			ImageRef:  item.ImageRef,
		})
	}
	return wishlist.Snapshot(), nil
}

func (c *Client) AddWishlistItem(ctx context.Context, productID string) error {
	body := map[string]interface{}{"productId": productID}
	return c.call(ctx, http.MethodPost, "/wishlist/add", body, nil)
}

func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) error {
	body := map[string]interface{}{"productId": productID}
	return c.call(ctx, http.MethodPost, "/wishlist/remove", body, nil)
}

func (c *Client) ClearWishlist(ctx context.Context) error {
	return c.call(ctx, http.MethodDelete, "/wishlist/clear", nil, nil)
}

func (c *Client) FetchOrder(ctx context.Context, orderNumber string) (domain.Order, error) {
	var dto orderDTO
	path := "/orders/" + url.PathEscape(orderNumber)
	if err := c.call(ctx, http.MethodGet, path, nil, &dto); err != nil {
		return domain.Order{}, err
	}
	return toOrder(dto), nil
}

func (c *Client) FetchOrders(ctx context.Context) ([]domain.Order, error) {
	var dtos []orderDTO
	if err := c.call(ctx, http.MethodGet, "/orders", nil, &dtos); err != nil {
		return nil, err
	}
	orders := make([]domain.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, toOrder(dto))
	}
	return orders, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderNumber string) error {
	path := "/orders/" + url.PathEscape(orderNumber) + "/cancel"
	return c.call(ctx, http.MethodPut, path, nil, nil)
}

func toOrder(dto orderDTO) domain.Order {
	items := make([]domain.OrderLineItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		items = append(items, domain.OrderLineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: decimal.NewFromFloat(item.UnitPrice),
			Quantity:  item.Quantity,
		})
	}
	return domain.Order{
		OrderNumber: dto.OrderNumber,
		Status:      domain.OrderStatus(dto.Status),
		Items:       items,
		Totals: domain.OrderTotals{
			Subtotal: decimal.NewFromFloat(dto.Totals.Subtotal),
			Discount: decimal.NewFromFloat(dto.Totals.Discount),
			Tax:      decimal.NewFromFloat(dto.Totals.Tax),
			Shipping: decimal.NewFromFloat(dto.Totals.Shipping),
			Total:    decimal.NewFromFloat(dto.Totals.Total),
		},
		ShippingAddress: dto.ShippingAddress,
		Payment:         dto.Payment,
		CreatedAt:       dto.CreatedAt,
	}
}

func (c *Client) call(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, snippet)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response failed: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("%s %s: remote rejected request: %s", method, path, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode payload failed: %w", err)
		}
	}
	return nil
}
