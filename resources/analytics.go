package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
)

type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type Analytics struct {
	base
	PageViews *apistate.State[cmsmodel.PageViewAnalytics]
	Articles  *apistate.State[Raw]
}

func NewAnalytics(c *apiclient.Client, n notify.Notifier) *Analytics {
	b := newBase(c, n)
	return &Analytics{
		base:      b,
		PageViews: apistate.New[cmsmodel.PageViewAnalytics](b.notifier),
		Articles:  apistate.New[Raw](b.notifier),
	}
}

// ArticleAnalytics covers one article, or all of them when articleID is empty.
func (a *Analytics) ArticleAnalytics(ctx context.Context, articleID string, params url.Values) (Raw, error) {
	path := "/analytics/articles/"
	if articleID != "" {
		path += seg(articleID) + "/"
	}
	return a.Articles.Execute(ctx, get[Raw](a.client, path, params))
}

func (a *Analytics) PageViewAnalytics(ctx context.Context, params url.Values) (cmsmodel.PageViewAnalytics, error) {
	return a.PageViews.Execute(ctx, get[cmsmodel.PageViewAnalytics](a.client, "/analytics/pageviews/", params))
}

func (a *Analytics) TrafficSources(ctx context.Context, params url.Values) (Raw, error) {
	return once(ctx, a.base, get[Raw](a.client, "/analytics/traffic-sources/", params))
}

func (a *Analytics) Engagement(ctx context.Context, params url.Values) (Raw, error) {
	return once(ctx, a.base, get[Raw](a.client, "/analytics/engagement/", params))
}

// Export downloads a report file.
func (a *Analytics) Export(ctx context.Context, format ExportFormat, params url.Values) ([]byte, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("format", string(format))
	return once(ctx, a.base, get[[]byte](a.client, "/analytics/export/", q))
}
