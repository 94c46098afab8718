package resources

import (
	"context"
	"io"
	"net/url"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
)

type MediaPage = cmsmodel.Paginated[cmsmodel.Media]

type Media struct {
	base
	List    *apistate.State[MediaPage]
	Uploads *apistate.State[cmsmodel.Media]
}

func NewMedia(c *apiclient.Client, n notify.Notifier) *Media {
	b := newBase(c, n)
	return &Media{
		base:    b,
		List:    apistate.New[MediaPage](b.notifier),
		Uploads: apistate.New[cmsmodel.Media](b.notifier),
	}
}

func (m *Media) Fetch(ctx context.Context, params url.Values) (MediaPage, error) {
	return m.List.Execute(ctx, get[MediaPage](m.client, "/media/", params))
}

// Upload sends one file as multipart form data.
func (m *Media) Upload(ctx context.Context, filename string, content io.Reader, fields map[string]string) (cmsmodel.Media, error) {
	form := &apiclient.Form{
		Fields: fields,
		Files:  []apiclient.FormFile{{Field: "file", Filename: filename, Content: content}},
	}
	return m.Uploads.Execute(ctx, upload[cmsmodel.Media](m.client, "/media/upload/", form))
}

func (m *Media) Delete(ctx context.Context, id string) error {
	_, err := once(ctx, m.base, del[Raw](m.client, "/media/"+seg(id)+"/"))
	return err
}

func (m *Media) Stats(ctx context.Context) (cmsmodel.MediaStats, error) {
	return once(ctx, m.base, get[cmsmodel.MediaStats](m.client, "/media/stats/", nil))
}

func (m *Media) Loading() bool {
	return m.List.Loading() || m.Uploads.Loading()
}
