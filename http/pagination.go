package http

import "context"

// PageFetcher is a function that fetches a page of items.
// Pages are numbered from 1, matching the GitHub and GitLab REST APIs.
// Returns the items, whether there are more pages, and any error.
type PageFetcher[T any] func(ctx context.Context, page int) (items []T, hasMore bool, err error)

// PageIterator provides iteration over paginated API results.
// It lazily fetches pages as needed and never requests a page
// after the fetcher has reported the last one.
type PageIterator[T any] struct {
	fetch   PageFetcher[T]
	page    int
	buffer  []T
	done    bool
	err     error
	pages   int // Pages fetched so far
	fetched int // Items returned so far
}

// NewPageIterator creates a new iterator with the given fetch function.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{
		fetch: fetch,
		page:  1,
	}
}

// Next returns the next item from the iterator.
// Returns the item, true if an item was returned, and any error.
// When iteration is complete, returns (zero, false, nil).
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}

	// Skip over empty pages that still report more results.
	for len(p.buffer) == 0 && !p.done {
		items, hasMore, err := p.fetch(ctx, p.page)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.buffer = items
		p.done = !hasMore
		p.page++
		p.pages++
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.fetched++

	return item, true, nil
}

// All collects all items from the iterator into a slice.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	var all []T
	for {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		all = append(all, item)
	}
	return all, nil
}

// Find returns the first item matching match, fetching only as many pages as needed.
// The boolean is false when no item matches.
func (p *PageIterator[T]) Find(ctx context.Context, match func(T) bool) (T, bool, error) {
	for {
		item, ok, err := p.Next(ctx)
		if err != nil || !ok {
			return item, false, err
		}
		if match(item) {
			return item, true, nil
		}
	}
}

// Pages returns the number of pages fetched so far.
func (p *PageIterator[T]) Pages() int {
	return p.pages
}

// Fetched returns the number of items returned so far.
func (p *PageIterator[T]) Fetched() int {
	return p.fetched
}

// FullPage reports whether a page of n items means more may follow.
// The platforms signal the last page by returning fewer than perPage items.
func FullPage(n, perPage int) bool {
	return n >= perPage
}
