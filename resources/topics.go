package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
)

type TopicPage = cmsmodel.Paginated[cmsmodel.Topic]

type Topics struct {
	base
	List *apistate.State[TopicPage]
}

func NewTopics(c *apiclient.Client, n notify.Notifier) *Topics {
	b := newBase(c, n)
	return &Topics{base: b, List: apistate.New[TopicPage](b.notifier)}
}

func scoped(accountSlug, path string) string {
	if accountSlug == "" {
		return path
	}
	return "/" + seg(accountSlug) + path
}

func (t *Topics) Fetch(ctx context.Context, params url.Values, accountSlug string) (TopicPage, error) {
	return t.List.Execute(ctx, get[TopicPage](t.client, scoped(accountSlug, "/topics/"), params))
}

func (t *Topics) Articles(ctx context.Context, slug string, params url.Values, accountSlug string) (ArticlePage, error) {
	path := scoped(accountSlug, "/topics/"+seg(slug)+"/articles/")
	return once(ctx, t.base, get[ArticlePage](t.client, path, params))
}

func (t *Topics) Create(ctx context.Context, in cmsmodel.TopicInput) (cmsmodel.Topic, error) {
	return once(ctx, t.base, post[cmsmodel.Topic](t.client, "/topics/", in))
}

func (t *Topics) Update(ctx context.Context, slug string, in cmsmodel.TopicInput) (cmsmodel.Topic, error) {
	return once(ctx, t.base, put[cmsmodel.Topic](t.client, "/topics/"+seg(slug)+"/", in))
}

func (t *Topics) Delete(ctx context.Context, slug string) error {
	_, err := once(ctx, t.base, del[Raw](t.client, "/topics/"+seg(slug)+"/"))
	return err
}
