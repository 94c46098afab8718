package resources

import (
	"context"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/notify"
)

type SEO struct {
	base
	State *apistate.State[Raw]
}

func NewSEO(c *apiclient.Client, n notify.Notifier) *SEO {
	b := newBase(c, n)
	return &SEO{base: b, State: apistate.New[Raw](b.notifier)}
}

func (s *SEO) Audit(ctx context.Context) (Raw, error) {
	return s.State.Execute(ctx, get[Raw](s.client, "/seo/audit/", nil))
}

func (s *SEO) OptimizeArticle(ctx context.Context, articleID string) (Raw, error) {
	return s.State.Execute(ctx, post[Raw](s.client, "/articles/"+seg(articleID)+"/seo-optimize/", nil))
}

func (s *SEO) Settings(ctx context.Context) (Raw, error) {
	return s.State.Execute(ctx, get[Raw](s.client, "/seo/settings/", nil))
}

func (s *SEO) UpdateSettings(ctx context.Context, settings any) (Raw, error) {
	return s.State.Execute(ctx, put[Raw](s.client, "/seo/settings/", settings))
}

func (s *SEO) GenerateSitemap(ctx context.Context) (Raw, error) {
	return s.State.Execute(ctx, post[Raw](s.client, "/seo/sitemap/generate/", nil))
}

func (s *SEO) UpdateRobotsTxt(ctx context.Context, content string) (Raw, error) {
	return s.State.Execute(ctx, post[Raw](s.client, "/seo/robots/", map[string]string{"content": content}))
}
