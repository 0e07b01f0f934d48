package platform

import "context"

// PageFunc fetches and processes one page. It returns whether more pages
// should be requested. Cursor or offset state lives in the closure; the
// provider decides how to derive the next page from the previous response.
type PageFunc func(ctx context.Context, page int) (more bool, err error)

// ForEachPage drives a provider pagination loop: it calls fetch for page
// 0..maxPages-1, strictly sequentially, stopping when fetch reports no more
// pages, returns an error, or the context is cancelled. Page N+1 is never
// requested before page N has been fully processed.
func ForEachPage(ctx context.Context, maxPages int, fetch PageFunc) error {
	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		more, err := fetch(ctx, page)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}
