package dashboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrLoading is returned by SetPage while a page is still loading.
var ErrLoading = errors.New("dashboard: page is loading")

// Query is what a PagedList asks the server for.
type Query struct {
	Page   int
	Search string
}

// Page is one server page of rows.
type Page[T any] struct {
	Rows    []T
	MaxPage int
	Total   int64
}

// Fetcher loads one page.
type Fetcher[T any] func(ctx context.Context, q Query) (Page[T], error)

// ListOptions describes how rows are sorted and filtered on the client.
type ListOptions[T any] struct {
	// Sorters compare two rows by a named field.
	Sorters map[string]func(a, b T) int
	// Category is the text FilterCategory matches against.
	Category func(T) string
}

// Snapshot is a consistent copy of a list's state.
type Snapshot[T any] struct {
	Page     int
	Search   string
	Category string
	Rows     []T
	MaxPage  int
	Total    int64
	Loading  bool
	Err      error
}

// PagedList keeps one page of server rows. Paging and search go to the
// server; SortBy and FilterCategory only reorder or narrow the loaded page.
type PagedList[T any] struct {
	fetch Fetcher[T]
	opts  ListOptions[T]

	mu       sync.Mutex
	page     int
	search   string
	category string
	sortBy   string
	sortAsc  bool
	loaded   []T
	maxPage  int
	total    int64
	loading  bool
	err      error
	reqSeq   uint64
}

func NewPagedList[T any](fetch Fetcher[T], opts ListOptions[T]) *PagedList[T] {
	return &PagedList[T]{fetch: fetch, opts: opts, page: 1, maxPage: 1}
}

// Load fetches the current page. A response that arrives after a newer
// request was issued is discarded.
func (l *PagedList[T]) Load(ctx context.Context) error {
	l.mu.Lock()
	l.reqSeq++
	seq := l.reqSeq
	q := Query{Page: l.page, Search: l.search}
	l.loading = true
	l.mu.Unlock()

	res, err := l.fetch(ctx, q)

	l.mu.Lock()
	defer l.mu.Unlock()
	if seq != l.reqSeq {
		return nil
	}
	l.loading = false
	if err != nil {
		l.err = err
		return err
	}
	l.err = nil
	l.loaded = res.Rows
	l.maxPage = res.MaxPage
	if l.maxPage < 1 {
		l.maxPage = 1
	}
	l.total = res.Total
	return nil
}

// Retry reloads the current page after an error.
func (l *PagedList[T]) Retry(ctx context.Context) error {
	return l.Load(ctx)
}

// SetPage moves to page n, clamped to [1, maxPage]. Refused while loading.
func (l *PagedList[T]) SetPage(ctx context.Context, n int) error {
	l.mu.Lock()
	if l.loading {
		l.mu.Unlock()
		return ErrLoading
	}
	if n < 1 {
		n = 1
	}
	if n > l.maxPage {
		n = l.maxPage
	}
	l.page = n
	l.mu.Unlock()
	return l.Load(ctx)
}

// SetSearch restarts from page 1 with a new search term. Allowed while loading.
func (l *PagedList[T]) SetSearch(ctx context.Context, s string) error {
	l.mu.Lock()
	l.search = strings.TrimSpace(s)
	l.page = 1
	l.mu.Unlock()
	return l.Load(ctx)
}

// SortBy orders the loaded page by field and returns the visible rows.
// An unknown field leaves the server order.
func (l *PagedList[T]) SortBy(field string, asc bool) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.opts.Sorters[field]; ok {
		l.sortBy, l.sortAsc = field, asc
	}
	return l.visible()
}

// FilterCategory narrows the loaded page to rows whose category contains x,
// ignoring case, and returns them. Empty x clears the filter.
func (l *PagedList[T]) FilterCategory(x string) []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.category = strings.TrimSpace(x)
	return l.visible()
}

// Rows returns the loaded page after the page-local sort and filter.
func (l *PagedList[T]) Rows() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible()
}

func (l *PagedList[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot[T]{
		Page:     l.page,
		Search:   l.search,
		Category: l.category,
		Rows:     l.visible(),
		MaxPage:  l.maxPage,
		Total:    l.total,
		Loading:  l.loading,
		Err:      l.err,
	}
}

func (l *PagedList[T]) visible() []T {
	out := make([]T, 0, len(l.loaded))
	needle := strings.ToLower(l.category)
	for _, row := range l.loaded {
		if needle != "" && l.opts.Category != nil &&
			!strings.Contains(strings.ToLower(l.opts.Category(row)), needle) {
			continue
		}
		out = append(out, row)
	}

	if cmp, ok := l.opts.Sorters[l.sortBy]; ok {
		asc := l.sortAsc
		sort.SliceStable(out, func(i, j int) bool {
			if asc {
				return cmp(out[i], out[j]) < 0
			}
			return cmp(out[i], out[j]) > 0
		})
	}
	return out
}
