package store

import (
	"context"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
)

// newTestItem returns a valid item report owned by userID.
func newTestItem(userID int64, name, category string, reported time.Time) *model.Item {
	return &model.Item{
		ItemName:         name,
		Category:         category,
		PrimaryColor:     "Black",
		DateLostOrFound:  reported.Add(-24 * time.Hour),
		WhereLostOrFound: "Bus",
		Location:         "Meskel Square",
		Subcity:          "Kirkos",
		ContactFirstName: "Abebe",
		ContactLastName:  "Kebede",
		ContactPhone:     "0911223344",
		ContactEmail:     "abebe@example.com",
		Status:           model.ItemStatusLost,
		DateReported:     reported,
		UserID:           userID,
	}
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reported := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	item, err := CreateItem(ctx, database, newTestItem(7, "Laptop", "Electronics", reported))
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected item id to be assigned")
	}
	if item.ItemName != "Laptop" {
		t.Errorf("expected name 'Laptop', got %q", item.ItemName)
	}
	if item.Status != model.ItemStatusLost {
		t.Errorf("expected status 'lost', got %q", item.Status)
	}
	if !item.DateReported.Equal(reported) {
		t.Errorf("expected date reported %v, got %v", reported, item.DateReported)
	}
	if item.UserID != 7 {
		t.Errorf("expected owner 7, got %d", item.UserID)
	}

	missing, err := GetItem(ctx, database, item.ID+1)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing item")
	}
}

func TestListRecentItems(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		item := newTestItem(1, "Lost thing", "Misc", base.Add(time.Duration(i)*time.Hour))
		CreateItem(ctx, database, item)
	}
	found := newTestItem(1, "Found thing", "Misc", base.Add(100*time.Hour))
	found.Status = model.ItemStatusFound
	CreateItem(ctx, database, found)

	lost, err := ListRecentItems(ctx, database, model.ItemStatusLost, RecentItemsLimit)
	if err != nil {
		t.Fatalf("ListRecentItems: %v", err)
	}
	if len(lost) != RecentItemsLimit {
		t.Fatalf("expected %d items, got %d", RecentItemsLimit, len(lost))
	}
	for i := 1; i < len(lost); i++ {
		if lost[i].DateReported.After(lost[i-1].DateReported) {
			t.Fatalf("items not newest first at %d", i)
		}
	}
	for _, it := range lost {
		if it.Status != model.ItemStatusLost {
			t.Errorf("unexpected status %q", it.Status)
		}
	}

	onlyFound, _ := ListRecentItems(ctx, database, model.ItemStatusFound, RecentItemsLimit)
	if len(onlyFound) != 1 {
		t.Errorf("expected 1 found item, got %d", len(onlyFound))
	}

	none, _ := ListRecentItems(ctx, database, model.ItemStatusReturned, RecentItemsLimit)
	if none == nil || len(none) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", none)
	}
}

func TestListItemsByUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	now := time.Now()
	CreateItem(ctx, database, newTestItem(1, "Keys", "Keys", now))
	CreateItem(ctx, database, newTestItem(1, "Phone", "Electronics", now))
	CreateItem(ctx, database, newTestItem(2, "Bag", "Bags", now))

	mine, err := ListItemsByUser(ctx, database, 1)
	if err != nil {
		t.Fatalf("ListItemsByUser: %v", err)
	}
	if len(mine) != 2 {
		t.Errorf("expected 2 items, got %d", len(mine))
	}

	empty, err := ListItemsByUser(ctx, database, 3)
	if err != nil {
		t.Fatalf("ListItemsByUser: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", empty)
	}
}

func TestUpdateItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	reported := time.Date(2024, 2, 2, 12, 0, 0, 0, time.UTC)
	item, _ := CreateItem(ctx, database, newTestItem(1, "Watch", "Accessories", reported))

	item.Status = model.ItemStatusReturned
	item.ItemName = "Gold Watch"
	ok, err := UpdateItem(ctx, database, item)
	if err != nil || !ok {
		t.Fatalf("UpdateItem = %v, %v", ok, err)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Status != model.ItemStatusReturned || got.ItemName != "Gold Watch" {
		t.Errorf("update not persisted: %+v", got)
	}
	if !got.DateReported.Equal(reported) || got.UserID != 1 {
		t.Errorf("owner or report time changed: %+v", got)
	}

	ghost := *item
	ghost.ID = item.ID + 50
	ok, err = UpdateItem(ctx, database, &ghost)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if ok {
		t.Error("expected update of missing item to report false")
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newTestItem(1, "Delete Me", "Misc", time.Now()))

	// Unknown id leaves the store unchanged.
	deleted, err := DeleteItem(ctx, database, item.ID+1)
	if err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if deleted {
		t.Error("expected delete of missing item to report false")
	}
	if got, _ := GetItem(ctx, database, item.ID); got == nil {
		t.Fatal("expected existing item to survive")
	}

	deleted, err = DeleteItem(ctx, database, item.ID)
	if err != nil || !deleted {
		t.Fatalf("DeleteItem = %v, %v", deleted, err)
	}
	if got, _ := GetItem(ctx, database, item.ID); got != nil {
		t.Error("expected item to be gone")
	}
}
