package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/egannguyen/go-bookstore-backend/internal/entity"
	"github.com/egannguyen/go-bookstore-backend/internal/repository"
)

// seedCatalog inserts a starter catalog on an empty database so the API is
// usable out of the box. Existing data is left untouched.
func seedCatalog(ctx context.Context, categories repository.CategoryRepository, books repository.BookRepository) error {
	existing, err := categories.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to check categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now()
	fiction := entity.Category{ID: uuid.NewString(), Name: "Fiction", CreatedAt: now, UpdatedAt: now}
	tech := entity.Category{ID: uuid.NewString(), Name: "Technology", CreatedAt: now, UpdatedAt: now}
	history := entity.Category{ID: uuid.NewString(), Name: "History", CreatedAt: now, UpdatedAt: now}
	for _, c := range []entity.Category{fiction, tech, history} {
		if err := categories.Create(ctx, &c); err != nil {
			return fmt.Errorf("failed to seed category %s: %w", c.Name, err)
		}
	}

	seed := []entity.Book{
		{ID: uuid.NewString(), MainText: "The Name of the Wind", Author: "Patrick Rothfuss", Price: 14.99, CategoryID: fiction.ID, Quantity: 40, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), MainText: "Project Hail Mary", Author: "Andy Weir", Price: 16.50, CategoryID: fiction.ID, Quantity: 25, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), MainText: "The Go Programming Language", Author: "Donovan & Kernighan", Price: 39.99, CategoryID: tech.ID, Quantity: 30, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), MainText: "Designing Data-Intensive Applications", Author: "Martin Kleppmann", Price: 44.99, CategoryID: tech.ID, Quantity: 20, CreatedAt: now, UpdatedAt: now},
		{ID: uuid.NewString(), MainText: "SPQR: A History of Ancient Rome", Author: "Mary Beard", Price: 18.00, CategoryID: history.ID, Quantity: 15, CreatedAt: now, UpdatedAt: now},
	}
	return books.Seed(ctx, seed)
}
