package feed

import (
	"context"

	"bskyarchive/pkg/bluesky"
	"bskyarchive/pkg/logger"
	"bskyarchive/pkg/throttle"
)

// Fetcher pages through an author feed until the upstream reports
// exhaustion. Any request failure aborts the whole fetch; the run is
// idempotent, so the next scheduled build simply retries wholesale.
type Fetcher struct {
	source   Source
	pacer    *throttle.Pacer
	pageSize int
	logger   logger.Logger
}

// NewFetcher creates a Fetcher over the given source
func NewFetcher(source Source, pageSize int, pacer *throttle.Pacer, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if pacer == nil {
		pacer = throttle.New(0)
	}
	return &Fetcher{
		source:   source,
		pacer:    pacer,
		pageSize: pageSize,
		logger:   log,
	}
}

// FetchAll resolves the actor and collects every feed page in upstream
// order. Paging stops when a page comes back without a cursor or without
// items. Duplicate items across pages (cursor drift) are passed through
// untouched.
func (f *Fetcher) FetchAll(ctx context.Context) ([]bluesky.FeedItem, error) {
	actor, err := f.source.Resolve(ctx)
	if err != nil {
		return nil, err
	}

	var items []bluesky.FeedItem
	cursor := ""
	pageNum := 0

	for {
		pageNum++

		page, err := f.source.Page(ctx, actor, f.pageSize, cursor)
		if err != nil {
			f.logger.WithError(err).WithFields(map[string]interface{}{
				"actor": actor,
				"page":  pageNum,
			}).Error("feed page fetch failed")
			return nil, err
		}

		items = append(items, page.Feed...)
		logger.LogPage(actor, pageNum, len(page.Feed), page.Cursor)

		if page.Cursor == "" || len(page.Feed) == 0 {
			break
		}

		cursor = page.Cursor
		f.pacer.Wait()
	}

	f.logger.InfoWithFields("feed fetch completed", map[string]interface{}{
		"actor": actor,
		"items": len(items),
		"pages": pageNum,
	})
	return items, nil
}
