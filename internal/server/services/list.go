package services

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/satellite/internal/codec"
	"github.com/dmitrijs2005/satellite/internal/common"
	"github.com/dmitrijs2005/satellite/internal/server/models"
)

// listCursor is the position after which the next page starts.
type listCursor struct {
	Key string
	At  time.Time
}

func encodeCursor(c listCursor) (string, error) {
	b, err := codec.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func decodeCursor(s string) (listCursor, error) {
	var c listCursor
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("malformed cursor: %w", common.ErrInvalidInput)
	}
	if err := codec.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("malformed cursor: %w", common.ErrInvalidInput)
	}
	return c, nil
}

func matches(item models.Listable, p models.ListParams) bool {
	if p.Owner != "" && item.ListOwner() != p.Owner {
		return false
	}
	m := p.Matcher
	if m == nil {
		return true
	}
	if m.Key != "" && item.ListKey() != m.Key {
		return false
	}
	if m.KeyPrefix != "" && !strings.HasPrefix(item.ListKey(), m.KeyPrefix) {
		return false
	}
	if m.Description != "" && !strings.Contains(item.ListDescription(), m.Description) {
		return false
	}
	return true
}

// position of an item in the requested order.
func position(item models.Listable, field models.ListOrderField) listCursor {
	switch field {
	case models.OrderByCreatedAt:
		return listCursor{Key: item.ListKey(), At: item.ListCreatedAt()}
	case models.OrderByUpdatedAt:
		return listCursor{Key: item.ListKey(), At: item.ListUpdatedAt()}
	default:
		return listCursor{Key: item.ListKey()}
	}
}

func compareCursor(a, b listCursor) int {
	if c := a.At.Compare(b.At); c != 0 {
		return c
	}
	return strings.Compare(a.Key, b.Key)
}

// paginate filters, orders and pages items that the caller may already read.
func paginate[T models.Listable](items []T, p models.ListParams) (models.ListResults[T], error) {
	var res models.ListResults[T]

	order := models.ListOrder{}
	if p.Order != nil {
		order = *p.Order
	}
	dir := 1
	if order.Desc {
		dir = -1
	}

	matched := make([]T, 0, len(items))
	for _, it := range items {
		if matches(it, p) {
			matched = append(matched, it)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return dir*compareCursor(position(matched[i], order.Field), position(matched[j], order.Field)) < 0
	})

	start := 0
	limit := 0
	if pg := p.Paginate; pg != nil {
		if pg.Limit < 0 {
			return res, fmt.Errorf("negative limit: %w", common.ErrInvalidInput)
		}
		limit = pg.Limit
		if pg.Cursor != "" {
			cur, err := decodeCursor(pg.Cursor)
			if err != nil {
				return res, err
			}
			start = len(matched)
			for i, it := range matched {
				if dir*compareCursor(position(it, order.Field), cur) > 0 {
					start = i
					break
				}
			}
		}
	}

	end := len(matched)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	res.Items = matched[start:end]
	res.ItemsLength = len(res.Items)
	res.MatchesLength = len(matched)

	if end < len(matched) && len(res.Items) > 0 {
		next, err := encodeCursor(position(res.Items[len(res.Items)-1], order.Field))
		if err != nil {
			return res, err
		}
		res.NextCursor = next
	}
	if limit > 0 {
		pages := (len(matched) + limit - 1) / limit
		page := (end + limit - 1) / limit
		res.MatchesPages = &pages
		res.ItemsPage = &page
	}
	return res, nil
}
