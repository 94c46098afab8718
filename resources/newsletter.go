package resources

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
)

type SubscriberPage = cmsmodel.Paginated[cmsmodel.Subscriber]

type Newsletter struct {
	base
	Subscribers *apistate.State[SubscriberPage]
}

func NewNewsletter(c *apiclient.Client, n notify.Notifier) *Newsletter {
	b := newBase(c, n)
	return &Newsletter{base: b, Subscribers: apistate.New[SubscriberPage](b.notifier)}
}

func (nl *Newsletter) Subscribe(ctx context.Context, in cmsmodel.SubscribeInput) (cmsmodel.Subscriber, error) {
	return once(ctx, nl.base, post[cmsmodel.Subscriber](nl.client, "/newsletter/subscribers/subscribe/", in))
}

func (nl *Newsletter) Unsubscribe(ctx context.Context, email string) error {
	_, err := once(ctx, nl.base, post[Raw](nl.client, "/newsletter/subscribers/unsubscribe/", map[string]string{"email": email}))
	return err
}

func (nl *Newsletter) List(ctx context.Context, params url.Values) (SubscriberPage, error) {
	return nl.Subscribers.Execute(ctx, get[SubscriberPage](nl.client, "/newsletter/subscribers/", params))
}

func (nl *Newsletter) Stats(ctx context.Context) (cmsmodel.SubscriberStats, error) {
	return once(ctx, nl.base, get[cmsmodel.SubscriberStats](nl.client, "/newsletter/subscribers/stats/", nil))
}

// Import uploads a subscriber CSV.
func (nl *Newsletter) Import(ctx context.Context, filename string, content io.Reader) (cmsmodel.ImportResult, error) {
	form := &apiclient.Form{Files: []apiclient.FormFile{{Field: "file", Filename: filename, Content: content}}}
	return once(ctx, nl.base, upload[cmsmodel.ImportResult](nl.client, "/newsletter/subscribers/import/", form))
}

// Export returns the raw export file.
func (nl *Newsletter) Export(ctx context.Context, params url.Values) ([]byte, error) {
	return once(ctx, nl.base, get[[]byte](nl.client, "/newsletter/subscribers/export/", params))
}

func (nl *Newsletter) Update(ctx context.Context, id string, upd cmsmodel.SubscriberUpdate) (cmsmodel.Subscriber, error) {
	return once(ctx, nl.base, patch[cmsmodel.Subscriber](nl.client, "/newsletter/subscribers/"+seg(id)+"/", upd))
}

func (nl *Newsletter) Delete(ctx context.Context, id string) error {
	_, err := once(ctx, nl.base, del[Raw](nl.client, "/newsletter/subscribers/"+seg(id)+"/"))
	return err
}

type CampaignPage = cmsmodel.Paginated[cmsmodel.Campaign]

type Campaigns struct {
	base
	List *apistate.State[CampaignPage]
}

func NewCampaigns(c *apiclient.Client, n notify.Notifier) *Campaigns {
	b := newBase(c, n)
	return &Campaigns{base: b, List: apistate.New[CampaignPage](b.notifier)}
}

func campaignPath(id, action string) string {
	path := "/newsletter/campaigns/" + seg(id) + "/"
	if action != "" {
		path += action + "/"
	}
	return path
}

func (cs *Campaigns) Fetch(ctx context.Context, params url.Values) (CampaignPage, error) {
	return cs.List.Execute(ctx, get[CampaignPage](cs.client, "/newsletter/campaigns/", params))
}

func (cs *Campaigns) Get(ctx context.Context, id string) (cmsmodel.Campaign, error) {
	return once(ctx, cs.base, get[cmsmodel.Campaign](cs.client, campaignPath(id, ""), nil))
}

func (cs *Campaigns) Create(ctx context.Context, in cmsmodel.CampaignInput) (cmsmodel.Campaign, error) {
	return once(ctx, cs.base, post[cmsmodel.Campaign](cs.client, "/newsletter/campaigns/", in))
}

func (cs *Campaigns) Update(ctx context.Context, id string, in cmsmodel.CampaignInput) (cmsmodel.Campaign, error) {
	return once(ctx, cs.base, put[cmsmodel.Campaign](cs.client, campaignPath(id, ""), in))
}

func (cs *Campaigns) Delete(ctx context.Context, id string) error {
	_, err := once(ctx, cs.base, del[Raw](cs.client, campaignPath(id, "")))
	return err
}

func (cs *Campaigns) Send(ctx context.Context, id string) (cmsmodel.Campaign, error) {
	return once(ctx, cs.base, post[cmsmodel.Campaign](cs.client, campaignPath(id, "send"), nil))
}

func (cs *Campaigns) Stats(ctx context.Context, id string) (cmsmodel.CampaignStats, error) {
	return once(ctx, cs.base, get[cmsmodel.CampaignStats](cs.client, campaignPath(id, "stats"), nil))
}

func (cs *Campaigns) Schedule(ctx context.Context, id string, at time.Time) (cmsmodel.Campaign, error) {
	body := map[string]string{"scheduled_at": at.UTC().Format(time.RFC3339)}
	return once(ctx, cs.base, post[cmsmodel.Campaign](cs.client, campaignPath(id, "schedule"), body))
}
