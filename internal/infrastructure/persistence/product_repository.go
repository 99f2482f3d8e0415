package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopflux/storefront/internal/domain/catalog"
	"github.com/shopflux/storefront/internal/domain/shared"
	"gorm.io/gorm"
)

// GormProductRepository reads the catalog. Listings only ever see active
// products; lookups by id may see inactive ones for order history.
type GormProductRepository struct {
	db *gorm.DB
}

var _ catalog.ProductRepository = (*GormProductRepository)(nil)

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormProductRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.first(ctx, "id = ? AND is_active = ?", id, true)
}

func (r *GormProductRepository) first(ctx context.Context, conds ...any) (*catalog.Product, error) {
	var p catalog.Product
	err := r.db.WithContext(ctx).First(&p, conds...).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, shared.ErrNotFound
	case err != nil:
		return nil, err
	}
	return &p, nil
}

// FindByIDs loads products in no particular order; missing ids are skipped.
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	products := []catalog.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindFeatured is newest first. A non-positive limit returns them all.
func (r *GormProductRepository) FindFeatured(ctx context.Context, limit int) ([]catalog.Product, error) {
	q := r.db.WithContext(ctx).
		Where("is_featured = ? AND is_active = ?", true, true).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var products []catalog.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *GormProductRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var products []catalog.Product
	err := r.active(ctx).
		Scopes(productsMatching(filter), productSort.scope(filter.OrderBy, filter.OrderDir), paged(filter)).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

// CountActive ignores the filter's paging and ordering.
func (r *GormProductRepository) CountActive(ctx context.Context, filter shared.Filter) (int64, error) {
	var n int64
	if err := r.active(ctx).Scopes(productsMatching(filter)).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *GormProductRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&catalog.Product{}).Where("is_active = ?", true)
}

// productsMatching narrows by free-text search, then by each criterion in
// productCriteria order. Price bounds apply to the effective price.
func productsMatching(f shared.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if term := strings.TrimSpace(f.Search); term != "" {
			like := "%" + escapeLike(term) + "%"
			db = db.Where("name ILIKE ? OR description ILIKE ? OR brand ILIKE ? OR array_to_string(tags, ' ') ILIKE ?",
				like, like, like, like)
		}
		for _, c := range productCriteria {
			if v, ok := f.Filters[c.key]; ok && v != nil {
				db = c.apply(db, v)
			}
		}
		return db
	}
}

type criterion struct {
	key   string
	apply func(db *gorm.DB, v any) *gorm.DB
}

var productCriteria = []criterion{
	{catalog.FilterCategory, equals("category = ?")},
	{catalog.FilterBrand, literal("brand ILIKE ?")},
	{catalog.FilterMinPrice, equals(effectivePrice + " >= ?")},
	{catalog.FilterMaxPrice, equals(effectivePrice + " <= ?")},
	{catalog.FilterOnSale, whenTrue("sale_price IS NOT NULL AND sale_price < price")},
	{catalog.FilterInStock, whenTrue("stock_quantity > 0")},
	{catalog.FilterFeatured, whenTrue("is_featured = ?", true)},
}

func equals(cond string) func(*gorm.DB, any) *gorm.DB {
	return func(db *gorm.DB, v any) *gorm.DB { return db.Where(cond, v) }
}

// literal matches a string value as typed, without LIKE wildcards.
func literal(cond string) func(*gorm.DB, any) *gorm.DB {
	return func(db *gorm.DB, v any) *gorm.DB {
		s, _ := v.(string)
		return db.Where(cond, escapeLike(s))
	}
}

// whenTrue applies cond only for a true flag; false means no restriction.
func whenTrue(cond string, args ...any) func(*gorm.DB, any) *gorm.DB {
	return func(db *gorm.DB, v any) *gorm.DB {
		if on, _ := v.(bool); on {
			return db.Where(cond, args...)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes user input match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }
