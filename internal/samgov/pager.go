package samgov

import (
	"context"

	"go.uber.org/zap"
)

// PageSize is the upstream page-size ceiling, used for every automated page.
const PageSize = 1000

// Searcher performs a single search request. *Client implements it.
type Searcher interface {
	Search(ctx context.Context, params SearchParams) (*SearchResponse, error)
}

// PageFunc is invoked after each successful page, before the next request.
type PageFunc func(page *SearchResponse)

// WindowResult reports what a window fetch accomplished.
//
// RateLimited is the recoverable outcome: the window stopped early on a 429
// and APICalls/RecordsFetched describe the progress made before it.
type WindowResult struct {
	APICalls       int
	RecordsFetched int
	RateLimited    bool
}

// Pager drives repeated searches over offset-paginated results.
type Pager struct {
	searcher Searcher
	logger   *zap.Logger
}

// NewPager creates a Pager. If logger is nil, logging is disabled.
func NewPager(searcher Searcher, logger *zap.Logger) *Pager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager{searcher: searcher, logger: logger}
}

// PaginateAll fetches every page for base starting at offset 0 and calls
// onPage after each one. It returns the first page (for display) and the
// cumulative number of records fetched.
//
// Any search failure, including a rate limit, is returned unchanged.
func (p *Pager) PaginateAll(ctx context.Context, base SearchParams, onPage PageFunc) (*SearchResponse, int, error) {
	var first *SearchResponse
	fetched := 0

	err := p.paginate(ctx, base, func(page *SearchResponse) {
		if first == nil {
			first = page
		}
		fetched += page.Len()
		if onPage != nil {
			onPage(page)
		}
	}, nil)
	return first, fetched, err
}

// PaginateWindow fetches every page posted between from and to (MM/DD/YYYY).
//
// A rate limit is not an error here: the returned result has RateLimited set
// and carries the partial counts. Every other failure is returned as an
// error, together with the partial result so the caller can still record it.
func (p *Pager) PaginateWindow(ctx context.Context, from, to string, onPage PageFunc) (*WindowResult, error) {
	result := &WindowResult{}
	base := SearchParams{PostedFrom: from, PostedTo: to}

	err := p.paginate(ctx, base, func(page *SearchResponse) {
		result.RecordsFetched += page.Len()
		if onPage != nil {
			onPage(page)
		}
	}, &result.APICalls)

	if IsRateLimited(err) {
		p.logger.Warn("rate limited during window",
			zap.String("from", from),
			zap.String("to", to),
			zap.Int("api_calls", result.APICalls),
			zap.Int("records", result.RecordsFetched),
		)
		result.RateLimited = true
		return result, nil
	}
	return result, err
}

// paginate is the shared loop. It stops when the cumulative count reaches
// the advertised total or a page comes back short. calls, if non-nil, is
// incremented before every request, including one that fails.
func (p *Pager) paginate(ctx context.Context, base SearchParams, onPage PageFunc, calls *int) error {
	params := base
	params.Limit = PageSize
	params.Offset = 0
	fetched := 0

	for {
		if calls != nil {
			*calls++
		}
		page, err := p.searcher.Search(ctx, params)
		if err != nil {
			return err
		}

		n := page.Len()
		fetched += n
		onPage(page)

		p.logger.Debug("page fetched",
			zap.Int("offset", params.Offset),
			zap.Int("records", n),
			zap.Int("fetched", fetched),
			zap.Int("total", page.Total()),
		)

		if fetched >= page.Total() || n < PageSize {
			return nil
		}
		params.Offset += PageSize
	}
}
