package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/jrsteele09/go-cms-client/validation"
)

type ArticlePage = cmsmodel.Paginated[cmsmodel.Article]

// Articles tracks the list and the detail fetch separately so one does not
// clobber the other's loading and error state.
type Articles struct {
	base
	List   *apistate.State[ArticlePage]
	Detail *apistate.State[cmsmodel.Article]
}

func NewArticles(c *apiclient.Client, n notify.Notifier) *Articles {
	b := newBase(c, n)
	return &Articles{
		base:   b,
		List:   apistate.New[ArticlePage](b.notifier),
		Detail: apistate.New[cmsmodel.Article](b.notifier),
	}
}

// Fetch lists articles. The list lives at the API root and is not account scoped.
func (a *Articles) Fetch(ctx context.Context, params url.Values) (ArticlePage, error) {
	return a.List.Execute(ctx, get[ArticlePage](a.client, "/", params))
}

// Get fetches one article, from a named account when accountSlug is set.
func (a *Articles) Get(ctx context.Context, slug, accountSlug string) (cmsmodel.Article, error) {
	path := "/detail/" + seg(slug) + "/"
	if accountSlug != "" {
		path = "/" + seg(accountSlug) + path
	}
	return a.Detail.Execute(ctx, get[cmsmodel.Article](a.client, path, nil))
}

func (a *Articles) Create(ctx context.Context, in cmsmodel.ArticleInput) (cmsmodel.Article, error) {
	if err := validation.ArticleSchema().Validate(in.Form()).Err(); err != nil {
		return cmsmodel.Article{}, err
	}
	return once(ctx, a.base, post[cmsmodel.Article](a.client, "/", in))
}

func (a *Articles) Update(ctx context.Context, slug string, in cmsmodel.ArticleInput) (cmsmodel.Article, error) {
	if err := validation.ArticleSchema().Validate(in.Form()).Err(); err != nil {
		return cmsmodel.Article{}, err
	}
	return once(ctx, a.base, put[cmsmodel.Article](a.client, "/detail/"+seg(slug)+"/", in))
}

func (a *Articles) Delete(ctx context.Context, slug string) error {
	_, err := once(ctx, a.base, del[Raw](a.client, "/detail/"+seg(slug)+"/"))
	return err
}

func (a *Articles) Publish(ctx context.Context, slug string) (cmsmodel.Article, error) {
	return once(ctx, a.base, post[cmsmodel.Article](a.client, "/detail/"+seg(slug)+"/publish/", nil))
}

func (a *Articles) Loading() bool {
	return a.List.Loading() || a.Detail.Loading()
}
