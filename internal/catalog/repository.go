package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"moduscap-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	FindProductByCode(ctx context.Context, code string) (*Product, error)
	ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error)
	FindOptionByCode(ctx context.Context, code string) (*ProductOption, error)
	UpdateOptionPrice(ctx context.Context, code, price string) error
	IsOptionInUse(ctx context.Context, optionID int64) (bool, error)
	DeleteOption(ctx context.Context, optionID int64) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const productColumns = `id, code, base_price, is_active, is_featured, is_customizable, sort_order, created_at, updated_at`

const optionColumns = `
	o.id, o.code, o.price, o.is_active, o.sort_order,
	g.id, g.code, g.input_type, g.min_select, g.max_select, g.is_required, g.is_active, g.sort_order`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*Product, error) {
	var (
		p         Product
		basePrice sql.NullString
	)
	if err := row.Scan(
		&p.ID, &p.Code, &basePrice, &p.IsActive, &p.IsFeatured,
		&p.IsCustomizable, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if basePrice.Valid {
		p.BasePrice = &basePrice.String
	}
	return &p, nil
}

func scanOption(row rowScanner, extra ...any) (*ProductOption, error) {
	o := &ProductOption{Group: &ProductOptionGroup{}}
	g := o.Group
	dest := []any{
		&o.ID, &o.Code, &o.Price, &o.IsActive, &o.SortOrder,
		&g.ID, &g.Code, &g.InputType, &g.MinSelect, &g.MaxSelect, &g.IsRequired, &g.IsActive, &g.SortOrder,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return o, nil
}

// FindProductByCode loads a product with its translations and its available
// and default options. It returns nil, nil when no product has the code.
func (r *repository) FindProductByCode(ctx context.Context, code string) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "FindProductByCode"),
		zap.String("code", code),
	)

	p, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		log.Error("failed to query product", zap.Error(err))
		return nil, err
	}

	byProduct, err := r.productTranslations(ctx, []int64{p.ID})
	if err != nil {
		log.Error("failed to query product translations", zap.Error(err))
		return nil, err
	}
	p.Translations = byProduct[p.ID]

	if err := r.loadProductOptions(ctx, p); err != nil {
		log.Error("failed to load product options", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (r *repository) ListProducts(ctx context.Context, filter ProductFilter) ([]*Product, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = false OR is_active) AND ($2 = false OR is_featured)
		ORDER BY sort_order, id`,
		filter.OnlyActive, filter.OnlyFeatured,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		products []*Product
		ids      []int64
	)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	byProduct, err := r.productTranslations(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		p.Translations = byProduct[p.ID]
	}
	return products, nil
}

// FindOptionByCode returns nil, nil when no option has the code.
func (r *repository) FindOptionByCode(ctx context.Context, code string) (*ProductOption, error) {
	o, err := scanOption(r.db.QueryRowContext(ctx, `
		SELECT `+optionColumns+`
		FROM product_options o
		JOIN product_option_groups g ON g.id = o.group_id
		WHERE o.code = $1`, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		logger.FromCtx(ctx).Error("failed to query option",
			zap.String("layer", "repository"),
			zap.String("code", code),
			zap.Error(err),
		)
		return nil, err
	}

	if err := r.loadOptionTranslations(ctx, []*ProductOption{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) UpdateOptionPrice(ctx context.Context, code, price string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE product_options SET price = $1, updated_at = NOW() WHERE code = $2`,
		price, code,
	)
	if err != nil {
		return fmt.Errorf("update option price: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOptionNotFound
	}
	return nil
}

func (r *repository) IsOptionInUse(ctx context.Context, optionID int64) (bool, error) {
	var inUse bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM product_available_options WHERE option_id = $1)
		    OR EXISTS(SELECT 1 FROM product_selected_options WHERE option_id = $1)`,
		optionID,
	).Scan(&inUse)
	return inUse, err
}

// DeleteOption removes the option; its translations go with it through ON DELETE CASCADE.
func (r *repository) DeleteOption(ctx context.Context, optionID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM product_options WHERE id = $1`, optionID)
	if err != nil {
		return fmt.Errorf("delete option: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOptionNotFound
	}
	return nil
}

func (r *repository) productTranslations(ctx context.Context, productIDs []int64) (map[int64]Translations, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, locale, name, COALESCE(description, ''), COALESCE(concept, '')
		FROM product_translations
		WHERE product_id = ANY($1)`,
		pq.Array(productIDs),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]Translations, len(productIDs))
	for rows.Next() {
		var (
			id int64
			t  Translation
		)
		if err := rows.Scan(&id, &t.Locale, &t.Name, &t.Description, &t.Concept); err != nil {
			return nil, err
		}
		out[id] = append(out[id], t)
	}
	return out, rows.Err()
}

// loadProductOptions fills AvailableOptions and DefaultOptions. An option that
// is both available and default is shared by pointer.
func (r *repository) loadProductOptions(ctx context.Context, p *Product) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+optionColumns+`, link.kind
		FROM (
			SELECT option_id, 'available' AS kind FROM product_available_options WHERE product_id = $1
			UNION ALL
			SELECT option_id, 'default' AS kind FROM product_selected_options WHERE product_id = $1
		) link
		JOIN product_options o ON o.id = link.option_id
		JOIN product_option_groups g ON g.id = o.group_id
		ORDER BY g.sort_order, o.sort_order, o.id`,
		p.ID,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	seen := make(map[int64]*ProductOption)
	var unique []*ProductOption
	for rows.Next() {
		var kind string
		o, err := scanOption(rows, &kind)
		if err != nil {
			return err
		}
		if prev, ok := seen[o.ID]; ok {
			o = prev
		} else {
			seen[o.ID] = o
			unique = append(unique, o)
		}

		if kind == "default" {
			p.DefaultOptions = append(p.DefaultOptions, o)
		} else {
			p.AvailableOptions = append(p.AvailableOptions, o)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(unique) == 0 {
		return nil
	}

	return r.loadOptionTranslations(ctx, unique)
}

// loadOptionTranslations attaches option and group translations to options.
func (r *repository) loadOptionTranslations(ctx context.Context, options []*ProductOption) error {
	optionIDs := make([]int64, 0, len(options))
	groups := make(map[int64][]*ProductOptionGroup)
	var groupIDs []int64
	for _, o := range options {
		optionIDs = append(optionIDs, o.ID)
		if o.Group == nil {
			continue
		}
		if _, ok := groups[o.Group.ID]; !ok {
			groupIDs = append(groupIDs, o.Group.ID)
		}
		groups[o.Group.ID] = append(groups[o.Group.ID], o.Group)
	}

	optTr, err := r.translationsByOwner(ctx, `
		SELECT option_id, locale, name, COALESCE(description, '')
		FROM product_option_translations
		WHERE option_id = ANY($1)`, optionIDs)
	if err != nil {
		return fmt.Errorf("option translations: %w", err)
	}
	for _, o := range options {
		o.Translations = optTr[o.ID]
	}

	if len(groupIDs) == 0 {
		return nil
	}
	groupTr, err := r.translationsByOwner(ctx, `
		SELECT group_id, locale, name, COALESCE(description, '')
		FROM product_option_group_translations
		WHERE group_id = ANY($1)`, groupIDs)
	if err != nil {
		return fmt.Errorf("group translations: %w", err)
	}
	for id, gs := range groups {
		for _, g := range gs {
			g.Translations = groupTr[id]
		}
	}
	return nil
}

func (r *repository) translationsByOwner(ctx context.Context, query string, ids []int64) (map[int64]Translations, error) {
	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]Translations, len(ids))
	for rows.Next() {
		var (
			id int64
			t  Translation
		)
		if err := rows.Scan(&id, &t.Locale, &t.Name, &t.Description); err != nil {
			return nil, err
		}
		out[id] = append(out[id], t)
	}
	return out, rows.Err()
}
