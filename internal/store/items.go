package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `id, item_name, category, brand, primary_color, secondary_color,
	date_lost_or_found, time_lost_or_found, image, additional_info, where_lost_or_found,
	location, subcity, zipcode, contact_first_name, contact_last_name, contact_phone,
	contact_email, status, date_reported, user_id`

// RecentItemsLimit is the number of items returned by ListRecentItems.
const RecentItemsLimit = 12

// CreateItem stores a new item report and returns it as persisted.
func CreateItem(ctx context.Context, db *sqlx.DB, item *model.Item) (*model.Item, error) {
	row := *item
	row.DateLostOrFound = row.DateLostOrFound.UTC()
	row.DateReported = row.DateReported.UTC()

	result, err := db.NamedExecContext(ctx,
		`INSERT INTO items (item_name, category, brand, primary_color, secondary_color,
			date_lost_or_found, time_lost_or_found, image, additional_info, where_lost_or_found,
			location, subcity, zipcode, contact_first_name, contact_last_name, contact_phone,
			contact_email, status, date_reported, user_id)
		 VALUES (:item_name, :category, :brand, :primary_color, :secondary_color,
			:date_lost_or_found, :time_lost_or_found, :image, :additional_info, :where_lost_or_found,
			:location, :subcity, :zipcode, :contact_first_name, :contact_last_name, :contact_phone,
			:contact_email, :status, :date_reported, :user_id)`,
		&row,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID.
func GetItem(ctx context.Context, db *sqlx.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	err := db.GetContext(ctx, item, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListRecentItems returns up to limit items with the given status, most
// recently reported first. An empty status matches every item.
func ListRecentItems(ctx context.Context, db *sqlx.DB, status string, limit int) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY date_reported DESC, id DESC LIMIT ?`
	args = append(args, limit)

	items := []model.Item{}
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("listing recent items: %w", err)
	}
	return items, nil
}

// ListItemsByUser returns every item reported by the given user.
func ListItemsByUser(ctx context.Context, db *sqlx.DB, userID int64) ([]model.Item, error) {
	items := []model.Item{}
	err := db.SelectContext(ctx, &items,
		`SELECT `+itemColumns+` FROM items WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing user items: %w", err)
	}
	return items, nil
}

// SearchItems returns one page of items matching the search parameters.
func SearchItems(ctx context.Context, db *sqlx.DB, p SearchParams) ([]model.Item, error) {
	query, args := BuildSearchQuery(p)

	items := []model.Item{}
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

// UpdateItem overwrites an item's report fields. Owner and report time are
// kept. It reports false if no such item exists.
func UpdateItem(ctx context.Context, db *sqlx.DB, item *model.Item) (bool, error) {
	row := *item
	row.DateLostOrFound = row.DateLostOrFound.UTC()

	result, err := db.NamedExecContext(ctx,
		`UPDATE items SET item_name = :item_name, category = :category, brand = :brand,
			primary_color = :primary_color, secondary_color = :secondary_color,
			date_lost_or_found = :date_lost_or_found, time_lost_or_found = :time_lost_or_found,
			image = :image, additional_info = :additional_info,
			where_lost_or_found = :where_lost_or_found, location = :location, subcity = :subcity,
			zipcode = :zipcode, contact_first_name = :contact_first_name,
			contact_last_name = :contact_last_name, contact_phone = :contact_phone,
			contact_email = :contact_email, status = :status
		 WHERE id = :id`,
		&row,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	return n > 0, nil
}

// DeleteItem removes an item. It reports false if no such item existed.
func DeleteItem(ctx context.Context, db *sqlx.DB, id int64) (bool, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deleting item: %w", err)
	}
	return n > 0, nil
}
