package utils

import (
	"errors"
	"strconv"

	"gorm.io/gorm"
)

// Page is a bounded slice of an ordered listing plus pagination metadata.
type Page[T any] struct {
	Items    []T
	Number   int
	NumPages int
	PerPage  int
	Count    int64
}

// HasPrevious reports whether a page precedes this one.
func (p *Page[T]) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool { return p.Number < p.NumPages }

// HasOtherPages reports whether the listing spans more than one page.
func (p *Page[T]) HasOtherPages() bool { return p.NumPages > 1 }

func (p *Page[T]) PreviousPageNumber() int { return p.Number - 1 }

func (p *Page[T]) NextPageNumber() int { return p.Number + 1 }

// PageRange lists every page number, 1..NumPages.
func (p *Page[T]) PageRange() []int {
	pages := make([]int, p.NumPages)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// StartIndex is the 1-based position of the first item on the page, 0 when empty.
func (p *Page[T]) StartIndex() int {
	if p.Count == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// NumPages returns how many pages count items fill. An empty listing still has one page.
func NumPages(count int64, perPage int) int {
	if count <= 0 || perPage <= 0 {
		return 1
	}
	return int((count + int64(perPage) - 1) / int64(perPage))
}

// ResolvePage maps a raw "page" parameter onto a valid page number.
// Anything that is not an integer gives page 1; an integer outside
// 1..numPages, including one too large for an int, gives the last page.
func ResolvePage(raw string, numPages int) int {
	n, err := strconv.Atoi(raw)
	if errors.Is(err, strconv.ErrRange) {
		return numPages
	}
	if err != nil {
		return 1
	}
	if n < 1 || n > numPages {
		return numPages
	}
	return n
}

// Paginate counts the rows matched by query and loads the requested page.
// Scopes (ordering, preloads) apply to the page query only.
func Paginate[T any](query *gorm.DB, raw string, perPage int, scopes ...func(*gorm.DB) *gorm.DB) (*Page[T], error) {
	var count int64
	if err := query.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return nil, err
	}

	numPages := NumPages(count, perPage)
	number := ResolvePage(raw, numPages)

	items := make([]T, 0, perPage)
	if count > 0 {
		err := query.Session(&gorm.Session{}).
			Scopes(scopes...).
			Limit(perPage).
			Offset((number - 1) * perPage).
			Find(&items).Error
		if err != nil {
			return nil, err
		}
	}

	return &Page[T]{
		Items:    items,
		Number:   number,
		NumPages: numPages,
		PerPage:  perPage,
		Count:    count,
	}, nil
}
