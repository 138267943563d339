// ABOUTME: Product catalog sources and loading of product descriptions into a vector store
// ABOUTME: Descriptions are embedded concurrently and inserted in catalog order
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/harper/shopassist/internal/llm"
	"github.com/harper/shopassist/internal/models"
	"github.com/harper/shopassist/internal/storage"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds in-flight embedding calls during Populate
const DefaultConcurrency = 4

// ErrInvalidProduct is returned when a catalog record fails validation
var ErrInvalidProduct = errors.New("invalid product")

// Source returns a snapshot of the product catalog
type Source interface {
	Products(ctx context.Context) ([]models.Product, error)
}

// Inserter receives labelled vectors
type Inserter interface {
	Insert(records []storage.Record) error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every product and reports the first invalid one
func Validate(products []models.Product) error {
	for i := range products {
		if err := validate.Struct(products[i]); err != nil {
			return fmt.Errorf("%w: product %d (id %d): %s", ErrInvalidProduct, i, products[i].ID, describe(err))
		}
	}
	return nil
}

func describe(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	parts := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		parts[i] = fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return strings.Join(parts, ", ")
}

// Populate embeds each product description and inserts it with the product's
// formatted text as label. Nothing is inserted unless every embedding succeeds.
// Insert errors are returned as-is, so a capacity overflow leaves the records
// before the failing one in the store.
func Populate(ctx context.Context, index Inserter, embedding llm.Embedding, products []models.Product, concurrency int) (int, error) {
	if len(products) == 0 {
		return 0, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	records := make([]storage.Record, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, p := range products {
		g.Go(func() error {
			vector, err := embedding.Embed(gctx, p.Description)
			if err != nil {
				return fmt.Errorf("embed product %d: %w", p.ID, err)
			}
			records[i] = storage.Record{Label: p.String(), Vector: vector}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := index.Insert(records); err != nil {
		return 0, fmt.Errorf("insert products: %w", err)
	}
	return len(records), nil
}
