// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package present

import (
	"fmt"

	"github.com/pdiddy/trendscope/pkg/types"
)

// Page is the pagination state derived from a list response.
type Page struct {
	Offset      int
	PageSize    int
	Total       int
	CurrentPage int // 1-based
	TotalPages  int // at least 1

	// First and Last are the 1-based displayed item range; both are 0 when
	// the page is empty.
	First int
	Last  int
}

// Paginate derives the page for offset and total. A page size of zero or
// less uses types.DefaultPageSize; negative inputs are treated as zero.
func Paginate(offset, pageSize, total int) Page {
	if pageSize <= 0 {
		pageSize = types.DefaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	if total < 0 {
		total = 0
	}

	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		pages = 1
	}
	current := offset/pageSize + 1
	if current > pages {
		current = pages
	}

	p := Page{
		Offset:      offset,
		PageSize:    pageSize,
		Total:       total,
		CurrentPage: current,
		TotalPages:  pages,
	}
	if offset < total {
		p.First = offset + 1
		p.Last = min(offset+pageSize, total)
	}
	return p
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Offset > 0 }

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Offset+p.PageSize < p.Total }

// PrevOffset is the offset of the previous page, never below zero.
func (p Page) PrevOffset() int { return max(p.Offset-p.PageSize, 0) }

// NextOffset is the offset of the next page, or the current offset on the last page.
func (p Page) NextOffset() int {
	if !p.HasNext() {
		return p.Offset
	}
	return p.Offset + p.PageSize
}

// Summary renders "Showing 51–97 of 97 (page 2 of 2)".
func (p Page) Summary() string {
	if p.Total == 0 || p.First == 0 {
		return fmt.Sprintf("Showing 0 of %d", p.Total)
	}
	return fmt.Sprintf("Showing %d–%d of %d (page %d of %d)", p.First, p.Last, p.Total, p.CurrentPage, p.TotalPages)
}
