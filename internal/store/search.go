package store

import (
	"math"
	"strings"

	"github.com/erazemk/lostfound/internal/db"
)

// Search pagination defaults and bounds.
const (
	DefaultSearchPage  = 1
	DefaultSearchLimit = 9
	MaxSearchLimit     = 100
)

// Sort keys accepted by SearchParams.Sort.
const (
	SortRecent          = "dateReported"
	SortName            = "itemName"
	SortDateLostOrFound = "dateLostorFound"
	SortDateOldest      = "dateOldest"
)

var sortOrders = map[string]string{
	SortRecent:          "date_reported DESC, id DESC",
	SortName:            "item_name ASC, id ASC",
	SortDateLostOrFound: "date_lost_or_found DESC, id DESC",
	SortDateOldest:      "date_lost_or_found ASC, id ASC",
}

// SearchParams are the filters, sort key and page of an item search.
type SearchParams struct {
	Search     string   `schema:"search"`
	Categories []string `schema:"category"`
	Location   string   `schema:"location"`
	Subcity    string   `schema:"subcity"`
	Sort       string   `schema:"sort"`
	Page       int      `schema:"page"`
	Limit      int      `schema:"limit"`
}

// Normalize replaces out-of-range paging values with the defaults and caps
// the page size.
func (p *SearchParams) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultSearchPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultSearchLimit
	}
	if p.Limit > MaxSearchLimit {
		p.Limit = MaxSearchLimit
	}
	// Keep Offset from overflowing.
	if p.Page-1 > math.MaxInt/p.Limit {
		p.Page = math.MaxInt/p.Limit + 1
	}
}

// Offset is the number of matching items before the requested page.
func (p *SearchParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// contains matches col case-insensitively against a literal substring.
func contains(col string) string {
	lower := db.LowerFunc
	return "instr(" + lower + "(" + col + "), " + lower + "(?)) > 0"
}

// anyOf ORs a substring match of col against each non-blank value.
func anyOf(col string, values []string) (string, []any) {
	var conds []string
	var args []any
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		conds = append(conds, contains(col))
		args = append(args, v)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "(" + strings.Join(conds, " OR ") + ")", args
}

// BuildSearchQuery turns search parameters into a SELECT over items. Filters
// are ANDed together; categories and comma-separated subcities each match
// if any alternative matches.
func BuildSearchQuery(p SearchParams) (string, []any) {
	p.Normalize()

	var where []string
	var args []any

	if p.Search != "" {
		where = append(where, contains("item_name"))
		args = append(args, p.Search)
	}
	if cond, a := anyOf("category", p.Categories); cond != "" {
		where = append(where, cond)
		args = append(args, a...)
	}
	if p.Location != "" {
		where = append(where, contains("location"))
		args = append(args, p.Location)
	}
	if cond, a := anyOf("subcity", strings.Split(p.Subcity, ",")); cond != "" {
		where = append(where, cond)
		args = append(args, a...)
	}

	var b strings.Builder
	b.WriteString("SELECT " + itemColumns + " FROM items")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}

	order, ok := sortOrders[p.Sort]
	if !ok {
		order = sortOrders[SortRecent]
	}
	b.WriteString(" ORDER BY " + order + " LIMIT ? OFFSET ?")
	args = append(args, p.Limit, p.Offset())

	return b.String(), args
}
