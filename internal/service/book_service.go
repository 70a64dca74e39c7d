package service

import (
	"context"
	"fmt"
	"time"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
	"github.com/google/uuid"
)

// BookService handles catalog reads and admin CRUD. It never touches the
// quantity/sold counters directly; those belong to the order workflow.
type BookService struct {
	books      repository.BookRepository
	categories repository.CategoryRepository
}

func NewBookService(books repository.BookRepository, categories repository.CategoryRepository) *BookService {
	return &BookService{books: books, categories: categories}
}

// CreateBookRequest is the admin book form.
type CreateBookRequest struct {
	MainText   string   `json:"main_text"`
	Author     string   `json:"author"`
	Price      float64  `json:"price"`
	CategoryID string   `json:"category_id"`
	Thumbnail  string   `json:"thumbnail"`
	Slider     []string `json:"slider"`
	Quantity   int      `json:"quantity"`
}

func (s *BookService) Create(ctx context.Context, req *CreateBookRequest) (*entity.Book, error) {
	if req.MainText == "" {
		return nil, fmt.Errorf("book title is required")
	}
	if req.Price < 0 || req.Quantity < 0 {
		return nil, fmt.Errorf("price and quantity must not be negative")
	}
	if req.CategoryID != "" {
		if _, err := s.categories.FindByID(ctx, req.CategoryID); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	book := &entity.Book{
		ID:         uuid.New().String(),
		MainText:   req.MainText,
		Author:     req.Author,
		Price:      req.Price,
		CategoryID: req.CategoryID,
		Thumbnail:  req.Thumbnail,
		Slider:     req.Slider,
		Quantity:   req.Quantity,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if book.Slider == nil {
		book.Slider = []string{}
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) FindByID(ctx context.Context, id string) (*entity.Book, error) {
	return s.books.FindByID(ctx, id)
}

func (s *BookService) FindAll(ctx context.Context, categoryID string, offset, limit int) ([]entity.Book, int, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.books.FindAll(ctx, categoryID, offset, limit)
}

func (s *BookService) Update(ctx context.Context, id string, req *CreateBookRequest) (*entity.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.MainText = req.MainText
	book.Author = req.Author
	book.Price = req.Price
	book.CategoryID = req.CategoryID
	book.Thumbnail = req.Thumbnail
	if req.Slider != nil {
		book.Slider = req.Slider
	}
	book.Quantity = req.Quantity

	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return s.books.FindByID(ctx, id)
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	return s.books.SoftDelete(ctx, id)
}
