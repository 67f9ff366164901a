// Package paginate splits ordered sequences into fixed-size, 1-based pages.
//
// Requested page numbers never fail: anything below 1 or non-numeric selects
// the first page, anything past the end selects the last one. An empty
// sequence still has exactly one (empty) page.
package paginate

import "strconv"

const DefaultSize = 10

type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"number"`
	Size        int   `json:"size"`
	Count       int64 `json:"count"`
	NumPages    int   `json:"num_pages"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

func (p Page[T]) NextNumber() (int, bool) {
	if !p.HasNext {
		return 0, false
	}
	return p.Number + 1, true
}

func (p Page[T]) PreviousNumber() (int, bool) {
	if !p.HasPrevious {
		return 0, false
	}
	return p.Number - 1, true
}

// Window is a resolved page position over count items, used to fetch a
// single page with LIMIT/OFFSET.
type Window struct {
	Number   int
	Size     int
	Count    int64
	NumPages int
}

func NewWindow(count int64, size, number int) Window {
	if size <= 0 {
		size = DefaultSize
	}
	if count < 0 {
		count = 0
	}
	pages := int((count + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	switch {
	case number < 1:
		number = 1
	case number > pages:
		number = pages
	}
	return Window{Number: number, Size: size, Count: count, NumPages: pages}
}

func (w Window) Offset() int { return (w.Number - 1) * w.Size }
func (w Window) Limit() int  { return w.Size }

// FromWindow wraps the items fetched for w into a Page.
func FromWindow[T any](w Window, items []T) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:       items,
		Number:      w.Number,
		Size:        w.Size,
		Count:       w.Count,
		NumPages:    w.NumPages,
		HasNext:     w.Number < w.NumPages,
		HasPrevious: w.Number > 1,
	}
}

// Paginate slices an in-memory sequence.
func Paginate[T any](items []T, size, number int) Page[T] {
	w := NewWindow(int64(len(items)), size, number)
	lo := w.Offset()
	hi := lo + w.Size
	if lo > len(items) {
		lo = len(items)
	}
	if hi > len(items) {
		hi = len(items)
	}
	return FromWindow(w, items[lo:hi])
}

// ParseNumber reads a raw ?page= value. Invalid input means page 1.
func ParseNumber(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
