package http

import (
	"time"

	"github.com/gofrs/uuid"
	"github.com/vasiliy-maslov/bookstore/internal/cart"
	"github.com/vasiliy-maslov/bookstore/internal/catalog"
	"github.com/vasiliy-maslov/bookstore/internal/order"
	"github.com/vasiliy-maslov/bookstore/internal/user"
)

// Money is rendered with exactly two decimals, e.g. "45.50".

type BookResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	Publisher   string    `json:"publisher"`
	PublishDate *string   `json:"publish_date"`
	Distributor string    `json:"distributor"`
	Dimensions  string    `json:"dimensions"`
	Pages       *int      `json:"pages"`
	Weight      *string   `json:"weight"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toBookResponse(b *catalog.Book) BookResponse {
	resp := BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Category:    b.Category,
		Price:       b.Price.StringFixed(2),
		Stock:       b.Stock,
		Description: b.Description,
		ImageURL:    b.ImageURL,
		Publisher:   b.Publisher,
		Distributor: b.Distributor,
		Dimensions:  b.Dimensions,
		Pages:       b.Pages,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
	if b.PublishDate != nil {
		d := b.PublishDate.Format(dateLayout)
		resp.PublishDate = &d
	}
	if b.Weight.Valid {
		w := b.Weight.Decimal.StringFixed(2)
		resp.Weight = &w
	}
	return resp
}

const dateLayout = "2006-01-02"

type BookPageResponse struct {
	Books   []BookResponse `json:"books"`
	Total   int            `json:"total"`
	Page    int            `json:"page"`
	PerPage int            `json:"per_page"`
	Pages   int            `json:"pages"`
}

func toBookPageResponse(p *catalog.Page) BookPageResponse {
	books := make([]BookResponse, 0, len(p.Books))
	for i := range p.Books {
		books = append(books, toBookResponse(&p.Books[i]))
	}
	return BookPageResponse{Books: books, Total: p.Total, Page: p.Page, PerPage: p.PerPage, Pages: p.Pages}
}

type CartItemResponse struct {
	ID       uuid.UUID     `json:"id"`
	BookID   uuid.UUID     `json:"book_id"`
	Quantity int           `json:"quantity"`
	Book     *BookResponse `json:"book,omitempty"`
	Subtotal string        `json:"subtotal"`
}

func toCartItemResponse(l *cart.Line) CartItemResponse {
	resp := CartItemResponse{
		ID:       l.ID,
		BookID:   l.BookID,
		Quantity: l.Quantity,
		Subtotal: l.Subtotal().StringFixed(2),
	}
	if l.Book != nil {
		b := toBookResponse(l.Book)
		resp.Book = &b
	}
	return resp
}

type CartResponse struct {
	Items       []CartItemResponse `json:"items"`
	TotalItems  int                `json:"total_items"`
	TotalAmount string             `json:"total_amount"`
}

func toCartResponse(c *cart.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(c.Items))
	for i := range c.Items {
		items = append(items, toCartItemResponse(&c.Items[i]))
	}
	return CartResponse{Items: items, TotalItems: c.TotalItems, TotalAmount: c.TotalAmount.StringFixed(2)}
}

type OrderItemResponse struct {
	ID        uuid.UUID     `json:"id"`
	BookID    uuid.UUID     `json:"book_id"`
	Quantity  int           `json:"quantity"`
	Price     string        `json:"price"`
	LineTotal string        `json:"line_total"`
	Book      *BookResponse `json:"book,omitempty"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	TotalAmount     string              `json:"total_amount"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	ShippingAddress string              `json:"shipping_address"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	OrderItems      []OrderItemResponse `json:"order_items"`
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.OrderItems))
	for _, it := range o.OrderItems {
		item := OrderItemResponse{
			ID:        it.ID,
			BookID:    it.BookID,
			Quantity:  it.Quantity,
			Price:     it.Price.StringFixed(2),
			LineTotal: it.LineTotal().StringFixed(2),
		}
		if it.Book != nil {
			b := toBookResponse(it.Book)
			item.Book = &b
		}
		items = append(items, item)
	}

	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Status:          o.Status.String(),
		PaymentStatus:   o.PaymentStatus.String(),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		OrderItems:      items,
	}
}

func toOrderResponses(orders []order.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return out
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
