package resources_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/internal/config"
	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/jrsteele09/go-cms-client/resources"
	"github.com/jrsteele09/go-cms-client/sessions"
	"github.com/jrsteele09/go-cms-client/storage/repofake"
	"github.com/jrsteele09/go-cms-client/tenants"
	"github.com/jrsteele09/go-cms-client/users"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type reply struct {
	status int
	body   string
}

type seenRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

// testFixture fakes the CMS API: routes map "METHOD /path" to a canned reply.
type testFixture struct {
	mu       sync.Mutex
	routes   map[string]reply
	requests []seenRequest
	server   *httptest.Server
	client   *apiclient.Client
	session  *sessions.Store
	tenant   *tenants.Store
	notes    *notify.Recorder
}

func setupTestFixture(t *testing.T, routes map[string]reply) *testFixture {
	t.Helper()
	f := &testFixture{routes: routes, notes: &notify.Recorder{}}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, seenRequest{
			method: r.Method, path: r.URL.Path, query: r.URL.Query(), header: r.Header.Clone(), body: string(body),
		})
		rep, ok := f.routes[r.Method+" "+r.URL.Path]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
			return
		}
		if rep.status == 0 {
			rep.status = http.StatusOK
		}
		w.WriteHeader(rep.status)
		_, _ = w.Write([]byte(rep.body))
	}))
	t.Cleanup(f.server.Close)

	st := repofake.NewFakeStore()
	f.session = sessions.NewStore(st)
	require.NoError(t, f.session.Set(users.User{ID: "user-1", Email: "a@b.com"}, "access-1", "refresh-1"))
	f.tenant = tenants.NewStore(st, f.session)
	f.client = apiclient.New(config.Client{}, f.server.URL, f.session, f.tenant, apiclient.WithRegisterer(prometheus.NewRegistry()))
	return f
}

func (f *testFixture) seen() []seenRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]seenRequest(nil), f.requests...)
}

func TestArticles(t *testing.T) {
	f := setupTestFixture(t, map[string]reply{
		"GET /":                       {body: `{"count":1,"next":null,"previous":null,"results":[{"id":"a1","title":"Hello","slug":"hello"}]}`},
		"GET /acme/detail/hello/":     {body: `{"id":"a1","title":"Hello","slug":"hello"}`},
		"POST /detail/hello/publish/": {body: `{"id":"a1","slug":"hello","status":"published","is_published":true}`},
		"DELETE /detail/hello/":       {status: http.StatusNoContent},
	})
	articles := resources.NewArticles(f.client, f.notes)
	ctx := context.Background()

	t.Run("list", func(t *testing.T) {
		page, err := articles.Fetch(ctx, url.Values{"page": {"2"}})
		require.NoError(t, err)
		require.Equal(t, 1, page.Count)
		require.Equal(t, "hello", page.Results[0].Slug)
		last := f.seen()[len(f.seen())-1]
		require.Equal(t, "2", last.query.Get("page"))
	})

	t.Run("detail failure leaves the list alone", func(t *testing.T) {
		_, err := articles.Get(ctx, "missing", "")
		require.Error(t, err)
		require.Equal(t, "Not found.", articles.Detail.Err())
		require.Empty(t, articles.List.Err())
		data, ok := articles.List.Data()
		require.True(t, ok)
		require.Equal(t, 1, data.Count)
		require.Equal(t, 1, f.notes.Count())
	})

	t.Run("account scoped detail", func(t *testing.T) {
		article, err := articles.Get(ctx, "hello", "acme")
		require.NoError(t, err)
		require.Equal(t, "Hello", article.Title)
		require.Empty(t, articles.Detail.Err())
	})

	t.Run("publish and delete", func(t *testing.T) {
		article, err := articles.Publish(ctx, "hello")
		require.NoError(t, err)
		require.True(t, article.IsPublished)
		require.NoError(t, articles.Delete(ctx, "hello"))
	})

	t.Run("invalid article is never sent", func(t *testing.T) {
		before := len(f.seen())
		_, err := articles.Create(ctx, cmsmodel.ArticleInput{Title: "Hi", Slug: "Bad Slug"})
		require.ErrorIs(t, err, apperrors.ErrValidation)
		require.Len(t, f.seen(), before)
	})
}

func TestBilling_ApplyCoupon(t *testing.T) {
	f := setupTestFixture(t, map[string]reply{
		"POST /accounts/acct-1/apply_coupon/": {body: `{"valid":true,"discount_amount":20}`},
		"GET /accounts/acct-1/invoices/":      {body: `[{"id":"in_1"},{"id":"in_2"}]`},
	})
	billing := resources.NewBilling(f.client, f.notes)

	coupon, err := billing.ApplyCoupon(context.Background(), "acct-1", "  save20 ")
	require.NoError(t, err)
	require.True(t, coupon.Valid)
	require.JSONEq(t, `{"coupon_code":"SAVE20"}`, f.seen()[0].body)

	invoices, err := billing.ListInvoices(context.Background(), "acct-1", 0)
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	require.Equal(t, "20", f.seen()[1].query.Get("limit"))

	_, err = billing.RefreshInvoices(context.Background(), "acct-1")
	require.NoError(t, err)
	require.Equal(t, "2", f.seen()[2].query.Get("limit"))
}

func TestAnalytics_Export(t *testing.T) {
	f := setupTestFixture(t, map[string]reply{
		"GET /analytics/export/": {body: "date,views\n2024-01-01,10\n"},
	})
	analytics := resources.NewAnalytics(f.client, f.notes)

	data, err := analytics.Export(context.Background(), resources.ExportCSV, url.Values{"period": {"30d"}})
	require.NoError(t, err)
	require.Equal(t, "date,views\n2024-01-01,10\n", string(data))
	require.Equal(t, "csv", f.seen()[0].query.Get("format"))
	require.Equal(t, "30d", f.seen()[0].query.Get("period"))
}

func TestMedia_Upload(t *testing.T) {
	f := setupTestFixture(t, map[string]reply{
		"POST /media/upload/": {status: http.StatusCreated, body: `{"id":"m1","file_name":"logo.png"}`},
	})
	media := resources.NewMedia(f.client, f.notes)

	m, err := media.Upload(context.Background(), "logo.png", strings.NewReader("png-bytes"), map[string]string{"alt_text": "Logo"})
	require.NoError(t, err)
	require.Equal(t, "m1", m.ID)
	require.True(t, strings.HasPrefix(f.seen()[0].header.Get("Content-Type"), "multipart/form-data"))
	require.Contains(t, f.seen()[0].body, "png-bytes")
}

func TestAccounts(t *testing.T) {
	f := setupTestFixture(t, map[string]reply{
		"GET /accounts/":                       {body: `[{"id":"acct-1","name":"Acme","slug":"acme"},{"id":"acct-2","name":"Beta","slug":"beta"}]`},
		"GET /accounts/acct-2/users/":          {body: `[{"id":"m1","account":{"id":"acct-2"},"user":{"id":"user-1"},"role":"editor"},{"id":"m2","account":{"id":"acct-2"},"user":{"id":"user-9"},"role":"admin"}]`},
		"PATCH /accounts/acct-2/users/user-1/": {body: `{"id":"m1","account":{"id":"acct-2"},"user":{"id":"user-1"},"role":"admin"}`},
		"GET /pages/":                          {body: `{"count":0,"results":[]}`},
	})
	accounts := resources.NewAccounts(f.client, f.notes, f.tenant)
	ctx := context.Background()

	list, err := accounts.FetchUserAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)

	_, err = accounts.Switch("acct-404")
	require.ErrorIs(t, err, apperrors.ErrTenantNotFound)

	_, err = accounts.Switch("acct-2")
	require.NoError(t, err)
	_, err = resources.NewPages(f.client, f.notes).Fetch(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, "acct-2", f.seen()[1].header.Get("X-Account-ID"))

	_, err = accounts.FetchMembers(ctx)
	require.NoError(t, err)
	role, ok := f.tenant.Role()
	require.True(t, ok)
	require.Equal(t, users.RoleEditor, role)
	require.False(t, f.tenant.CanManageUsers())

	_, err = accounts.UpdateRole(ctx, "user-1", users.RoleAdmin)
	require.NoError(t, err)
	require.True(t, f.tenant.CanManageUsers())
}

func TestSeries(t *testing.T) {
	f := setupTestFixture(t, map[string]reply{
		"GET /api/":              {body: `{"series":[{"id":"s1","title":"Go","article_count":2},{"id":"s2","title":"Draft","article_count":0}]}`},
		"POST /api/series/":      {status: http.StatusCreated, body: `{"id":"s3","title":"New"}`},
		"GET /api/series/s1/":    {body: `{"series":{"id":"s1","title":"Go"},"articles":[{"id":"a1"},{"id":"a2"},{"id":"a3"}]}`},
		"DELETE /api/series/s9/": {status: http.StatusForbidden, body: `{"detail":"Not allowed"}`},
	})
	series := resources.NewSeries(f.client, f.notes)
	ctx := context.Background()

	all, err := series.FetchAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "true", f.seen()[0].query.Get("include_series"))
	require.Len(t, series.Published(), 1)
	require.Len(t, series.Drafts(), 1)

	created, err := series.Create(ctx, cmsmodel.SeriesInput{Title: "New"})
	require.NoError(t, err)
	require.Equal(t, "s3", series.All()[0].ID)
	last, _ := f.notes.Last()
	require.Equal(t, notify.LevelSuccess, last.Level)
	require.Contains(t, last.Text, created.Title)

	_, err = series.FetchDetails(ctx, "s1")
	require.NoError(t, err)
	nav := series.Navigation("a2")
	require.Equal(t, 1, nav.CurrentIndex)
	require.Equal(t, "a1", nav.Previous.ID)
	require.Equal(t, "a3", nav.Next.ID)
	require.Nil(t, series.Navigation("a1").Previous)

	before := f.notes.Count()
	require.Error(t, series.Delete(ctx, "s9"))
	require.Equal(t, before+1, f.notes.Count())
	last, _ = f.notes.Last()
	require.Equal(t, "Failed to delete series", last.Title)
	require.Equal(t, "Not allowed", last.Text)

	series.ClearCurrent()
	require.Equal(t, -1, series.Navigation("a2").CurrentIndex)
}

func TestContentAnalysis(t *testing.T) {
	results := cmsmodel.TextAnalysisResults{
		FleschReadingEase: 65,
		ReadabilityLevel:  "Standard",
		Issues: []cmsmodel.AnalysisIssue{
			{Type: "grammar", Severity: "error"},
			{Type: "style", Severity: "minor"},
			{Type: "style", Severity: "minor"},
		},
	}
	analysisBody, err := json.Marshal(cmsmodel.TextAnalysis{ID: "an-1", Results: results})
	require.NoError(t, err)

	f := setupTestFixture(t, map[string]reply{
		"POST /content-analysis/text-analysis/analyze/":         {body: string(analysisBody)},
		"GET /content-analysis/text-analysis/an-1/suggestions/": {body: `[{"id":"sg1","title":"Shorter","suggested_text":"Use fewer words"}]`},
		"POST /content-analysis/realtime-check/":                {status: http.StatusInternalServerError},
	})
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	ca := resources.NewContentAnalysis(f.client, f.notes, resources.WithNowTime(func() time.Time { return at }))
	ctx := context.Background()

	t.Run("too short", func(t *testing.T) {
		_, err := ca.Analyze(ctx, "  short  ", "", "")
		require.ErrorIs(t, err, resources.ErrTextTooShort)
		require.Empty(t, f.seen())
		last, _ := f.notes.Last()
		require.Equal(t, notify.LevelWarning, last.Level)
	})

	t.Run("realtime defaults", func(t *testing.T) {
		require.Equal(t, cmsmodel.SafeRealtimeCheck(), ca.RealtimeCheck(ctx, "abc", "", ""))
		require.Equal(t, cmsmodel.SafeRealtimeCheck(), ca.RealtimeCheck(ctx, "long enough text", "", ""))
	})

	t.Run("comprehensive", func(t *testing.T) {
		got, err := ca.Analyze(ctx, "This is a long enough paragraph.", cmsmodel.AnalysisComprehensive, "en")
		require.NoError(t, err)
		require.Len(t, got.Issues, 3)
		require.Equal(t, at, ca.LastAnalysis())
		require.True(t, ca.HasIssues())
		require.Equal(t, map[string]int{"minor": 2, "warning": 0, "error": 1}, ca.IssueCountBySeverity())
		require.Equal(t, resources.ReadabilityRating{Level: "Standard", Color: "yellow", Score: 65}, ca.Readability())

		suggestions := ca.Suggestions()
		require.Len(t, suggestions, 1)
		require.Equal(t, "Use fewer words", suggestions[0].SuggestionText)

		last, _ := f.notes.Last()
		require.Equal(t, "Analysis Complete", last.Title)
		require.Equal(t, "Found 3 issues, readability: Standard", last.Text)
	})

	t.Run("clear", func(t *testing.T) {
		ca.ClearResults()
		require.Nil(t, ca.Results())
		require.Equal(t, "unknown", ca.Readability().Level)
		require.Equal(t, map[string]int{"minor": 0, "warning": 0, "error": 0}, ca.IssueCountBySeverity())
	})
}

func TestReadabilityColor(t *testing.T) {
	for score, want := range map[float64]string{95: "green", 80: "green", 60: "yellow", 45: "orange", 10: "red"} {
		require.Equal(t, want, resources.ReadabilityColor(score))
	}
}
