package resources

import (
	"context"
	"net/url"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
)

type PagePage = cmsmodel.Paginated[cmsmodel.Page]

type Pages struct {
	base
	List   *apistate.State[PagePage]
	Detail *apistate.State[cmsmodel.Page]
}

func NewPages(c *apiclient.Client, n notify.Notifier) *Pages {
	b := newBase(c, n)
	return &Pages{
		base:   b,
		List:   apistate.New[PagePage](b.notifier),
		Detail: apistate.New[cmsmodel.Page](b.notifier),
	}
}

func (p *Pages) Fetch(ctx context.Context, params url.Values) (PagePage, error) {
	return p.List.Execute(ctx, get[PagePage](p.client, "/pages/", params))
}

func (p *Pages) Get(ctx context.Context, slug string) (cmsmodel.Page, error) {
	return p.Detail.Execute(ctx, get[cmsmodel.Page](p.client, "/pages/"+seg(slug)+"/", nil))
}

func (p *Pages) Create(ctx context.Context, in cmsmodel.PageInput) (cmsmodel.Page, error) {
	return once(ctx, p.base, post[cmsmodel.Page](p.client, "/pages/", in))
}

func (p *Pages) Update(ctx context.Context, slug string, in cmsmodel.PageInput) (cmsmodel.Page, error) {
	return once(ctx, p.base, put[cmsmodel.Page](p.client, "/pages/"+seg(slug)+"/", in))
}

func (p *Pages) Delete(ctx context.Context, slug string) error {
	_, err := once(ctx, p.base, del[Raw](p.client, "/pages/"+seg(slug)+"/"))
	return err
}

func (p *Pages) Loading() bool {
	return p.List.Loading() || p.Detail.Loading()
}
