package resources

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// ArticleOrder places one article within a series.
type ArticleOrder struct {
	ID    string
	Order int
}

// SeriesNavigation is the neighbourhood of an article in the current series.
type SeriesNavigation struct {
	Previous     *cmsmodel.SeriesArticle
	Next         *cmsmodel.SeriesArticle
	CurrentIndex int
}

// Series keeps a local copy of the account's series and the one being viewed.
// Each failure raises one notification titled after the action that failed.
type Series struct {
	base
	mu       sync.RWMutex
	series   []cmsmodel.Series
	current  *cmsmodel.Series
	articles []cmsmodel.SeriesArticle
}

func NewSeries(c *apiclient.Client, n notify.Notifier) *Series {
	return &Series{base: newBase(c, n)}
}

func (s *Series) failed(title, fallback string, err error) {
	text := fallback
	var apiErr *apiclient.APIError
	if asAPIError(err, &apiErr) && apiErr.Message != apiclient.DefaultErrorMessage {
		text = apiErr.Message
	}
	s.notifier.Notify(notify.Notification{Title: title, Text: text, Level: notify.LevelError})
}

func seriesPath(id string) string {
	return "/api/series/" + seg(id) + "/"
}

func articleAssignPath(articleID string) string {
	return "/api/detail/" + seg(articleID) + "/"
}

func (s *Series) FetchAll(ctx context.Context, params url.Values) ([]cmsmodel.Series, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("include_series", "true")
	listing, err := quiet(ctx, get[cmsmodel.SeriesListing](s.client, "/api/", q))
	if err != nil {
		s.failed("Failed to load series", "Unable to fetch series", err)
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.series = listing.Series
	return slices.Clone(s.series), nil
}

func (s *Series) FetchDetails(ctx context.Context, seriesID string) (*cmsmodel.Series, error) {
	detail, err := quiet(ctx, get[cmsmodel.SeriesDetail](s.client, seriesPath(seriesID), nil))
	if err != nil {
		s.failed("Failed to load series", "Unable to fetch series details", err)
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := detail.Series
	s.current = &current
	s.articles = detail.Articles
	return &current, nil
}

func (s *Series) Create(ctx context.Context, in cmsmodel.SeriesInput) (cmsmodel.Series, error) {
	created, err := quiet(ctx, post[cmsmodel.Series](s.client, "/api/series/", in))
	if err != nil {
		s.failed("Failed to create series", "Unable to create series", err)
		return cmsmodel.Series{}, err
	}
	s.mu.Lock()
	s.series = append([]cmsmodel.Series{created}, s.series...)
	s.mu.Unlock()
	s.notifier.Notify(notify.Success("Series created", fmt.Sprintf("%q has been created successfully", created.Title)))
	return created, nil
}

func (s *Series) Update(ctx context.Context, seriesID string, in cmsmodel.SeriesInput) (cmsmodel.Series, error) {
	updated, err := quiet(ctx, patch[cmsmodel.Series](s.client, seriesPath(seriesID), in))
	if err != nil {
		s.failed("Failed to update series", "Unable to update series", err)
		return cmsmodel.Series{}, err
	}
	s.mu.Lock()
	if i := slices.IndexFunc(s.series, func(x cmsmodel.Series) bool { return x.ID == seriesID }); i >= 0 {
		s.series[i] = updated
	}
	if s.current != nil && s.current.ID == seriesID {
		u := updated
		s.current = &u
	}
	s.mu.Unlock()
	s.notifier.Notify(notify.Success("Series updated", fmt.Sprintf("%q has been updated", updated.Title)))
	return updated, nil
}

func (s *Series) Delete(ctx context.Context, seriesID string) error {
	if _, err := quiet(ctx, del[Raw](s.client, seriesPath(seriesID))); err != nil {
		s.failed("Failed to delete series", "Unable to delete series", err)
		return err
	}
	s.mu.Lock()
	s.series = slices.DeleteFunc(s.series, func(x cmsmodel.Series) bool { return x.ID == seriesID })
	if s.current != nil && s.current.ID == seriesID {
		s.current = nil
		s.articles = nil
	}
	s.mu.Unlock()
	s.notifier.Notify(notify.Success("Series deleted", "Series has been deleted successfully"))
	return nil
}

// AssignArticle adds an article to a series, at order when it is set.
func (s *Series) AssignArticle(ctx context.Context, articleID, seriesID string, order *int) (cmsmodel.Article, error) {
	body := cmsmodel.SeriesAssignment{Series: &seriesID, SeriesOrder: order}
	article, err := quiet(ctx, patch[cmsmodel.Article](s.client, articleAssignPath(articleID), body))
	if err != nil {
		s.failed("Failed to assign article", "Unable to assign article to series", err)
		return cmsmodel.Article{}, err
	}
	s.notifier.Notify(notify.Success("Article assigned", "Article has been added to the series"))
	if cur := s.Current(); cur != nil && cur.ID == seriesID {
		s.reload(ctx, seriesID)
	}
	return article, nil
}

func (s *Series) RemoveArticle(ctx context.Context, articleID string) (cmsmodel.Article, error) {
	zero := 0
	body := cmsmodel.SeriesAssignment{Series: nil, SeriesOrder: &zero}
	article, err := quiet(ctx, patch[cmsmodel.Article](s.client, articleAssignPath(articleID), body))
	if err != nil {
		s.failed("Failed to remove article", "Unable to remove article from series", err)
		return cmsmodel.Article{}, err
	}
	s.notifier.Notify(notify.Success("Article removed", "Article has been removed from the series"))
	if cur := s.Current(); cur != nil {
		s.reload(ctx, cur.ID)
	}
	return article, nil
}

// Reorder sends every new position concurrently and fails if any update fails.
func (s *Series) Reorder(ctx context.Context, seriesID string, order []ArticleOrder) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, o := range order {
		g.Go(func() error {
			body := map[string]int{"series_order": o.Order}
			_, err := quiet(gctx, patch[Raw](s.client, articleAssignPath(o.ID), body))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.failed("Failed to reorder", "Unable to reorder series articles", err)
		return err
	}
	s.notifier.Notify(notify.Success("Order updated", "Series article order has been updated"))
	s.reload(ctx, seriesID)
	return nil
}

func (s *Series) reload(ctx context.Context, seriesID string) {
	if _, err := s.FetchDetails(ctx, seriesID); err != nil {
		log.Debug().Err(err).Str("series", seriesID).Msg("resources: series reload failed")
	}
}

func (s *Series) Navigation(articleID string) SeriesNavigation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || len(s.articles) == 0 {
		return SeriesNavigation{CurrentIndex: -1}
	}
	i := slices.IndexFunc(s.articles, func(a cmsmodel.SeriesArticle) bool { return a.ID == articleID })
	nav := SeriesNavigation{CurrentIndex: i}
	if i > 0 {
		prev := s.articles[i-1]
		nav.Previous = &prev
	}
	if i < len(s.articles)-1 {
		next := s.articles[i+1]
		nav.Next = &next
	}
	return nav
}

// Published are the series with at least one article.
func (s *Series) Published() []cmsmodel.Series {
	return s.filter(func(x cmsmodel.Series) bool { return x.ArticleCount > 0 })
}

func (s *Series) Drafts() []cmsmodel.Series {
	return s.filter(func(x cmsmodel.Series) bool { return x.ArticleCount == 0 })
}

func (s *Series) filter(keep func(cmsmodel.Series) bool) []cmsmodel.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []cmsmodel.Series
	for _, x := range s.series {
		if keep(x) {
			out = append(out, x)
		}
	}
	return out
}

func (s *Series) All() []cmsmodel.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.series)
}

func (s *Series) Current() *cmsmodel.Series {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	c := *s.current
	return &c
}

func (s *Series) Articles() []cmsmodel.SeriesArticle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.articles)
}

func (s *Series) ClearCurrent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
	s.articles = nil
}
