package entity

import (
	"time"
)

// Book is a catalog item. Quantity and Sold form the inventory ledger and are
// only ever mutated inside an order transaction.
type Book struct {
	ID         string    `json:"id"`
	MainText   string    `json:"main_text"`
	Author     string    `json:"author"`
	Price      float64   `json:"price"`
	CategoryID string    `json:"category_id"`
	Thumbnail  string    `json:"thumbnail"`
	Slider     []string  `json:"slider"`
	Quantity   int       `json:"quantity"`
	Sold       int       `json:"sold"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Category groups books.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is a registered account. PasswordHash and RefreshToken never leave the
// backend.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Phone        string    `json:"phone"`
	Role         string    `json:"role"`
	Avatar       string    `json:"avatar"`
	Address      string    `json:"address"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ActingUser is the authenticated identity attached to a request.
type ActingUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

// OrderLine is one (book, quantity) pair within an order. Immutable once the
// order is created.
type OrderLine struct {
	BookID   string `json:"book_id"`
	BookName string `json:"book_name"`
	Quantity int    `json:"quantity"`
}

// Order is a customer order. Status changes only through the workflow state
// machine; lines never change after creation.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Name       string      `json:"name"`
	Address    string      `json:"address"`
	Phone      string      `json:"phone"`
	Type       string      `json:"type"`
	TotalPrice float64     `json:"total_price"`
	Lines      []OrderLine `json:"lines"`
	Status     OrderStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// History is the append-only purchase record created in the same transaction
// as its order. It backs per-user order history and review eligibility.
type History struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Name       string      `json:"name"`
	Email      string      `json:"email"`
	Phone      string      `json:"phone"`
	Lines      []OrderLine `json:"lines"`
	TotalPrice float64     `json:"total_price"`
	CreatedAt  time.Time   `json:"created_at"`
}

// Comment is a review left by a user who purchased the book.
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Content   string    `json:"content"`
	Star      int       `json:"star"`
	Feeling   string    `json:"feeling"`
	Image     string    `json:"image"`
	CreatedAt time.Time `json:"created_at"`
}

// Support ticket statuses.
const (
	SupportStatusPending  = "pending"
	SupportStatusAnswered = "answered"
)

// SupportRequest is a customer support ticket.
type SupportRequest struct {
	ID          string    `json:"id"`
	MainIssue   string    `json:"main_issue"`
	DetailIssue string    `json:"detail_issue"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	OrderNumber string    `json:"order_number"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	FileList    []string  `json:"file_list"`
	Status      string    `json:"status"`
	AdminReply  string    `json:"admin_reply"`
	ReplyImages []string  `json:"reply_images"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
