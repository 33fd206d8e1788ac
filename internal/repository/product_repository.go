package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/huertacl/catalog-service/internal/domain"
)

// ProductRepository manages product persistence. Reads join the owning category.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]domain.Product, error)
}

type productRepository struct {
	db DBTX
}

// NewProductRepository builds the repository.
func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

const productSelect = `
        SELECT p.id, p.name, p.price, p.stock, p.image, p.description, p.origin, p.sustainability,
            p.recipe, p.recommendations, p.created_at, p.updated_at,
            c.id, c.name, c.description, c.created_at, c.updated_at
        FROM products p JOIN categories c ON c.id = p.category_id`

func scanProduct(row pgx.Row, p *domain.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Image,
		&p.Description,
		&p.Origin,
		&p.Sustainability,
		&p.Recipe,
		&p.Recommendations,
		&p.CreatedAt,
		&p.UpdatedAt,
		&p.Category.ID,
		&p.Category.Name,
		&p.Category.Description,
		&p.Category.CreatedAt,
		&p.Category.UpdatedAt,
	)
}

func (r *productRepository) Create(ctx context.Context, p *domain.Product) error {
	const query = `
        INSERT INTO products (name, price, category_id, stock, image, description, origin,
            sustainability, recipe, recommendations)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		p.Name,
		p.Price,
		p.Category.ID,
		p.Stock,
		p.Image,
		p.Description,
		p.Origin,
		p.Sustainability,
		p.Recipe,
		p.Recommendations,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *productRepository) Update(ctx context.Context, p *domain.Product) error {
	const query = `
        UPDATE products SET name=$1, price=$2, category_id=$3, stock=$4, image=$5, description=$6,
            origin=$7, sustainability=$8, recipe=$9, recommendations=$10, updated_at=NOW()
        WHERE id=$11`
	cmd, err := r.db.Exec(ctx, query,
		p.Name,
		p.Price,
		p.Category.ID,
		p.Stock,
		p.Image,
		p.Description,
		p.Origin,
		p.Sustainability,
		p.Recipe,
		p.Recommendations,
		p.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM products WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	if err := scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id=$1`, id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM products WHERE name=$1)`, name).Scan(&exists)
	return exists, err
}

func (r *productRepository) List(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, productSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
