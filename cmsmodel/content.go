// Package cmsmodel holds the JSON shapes exchanged with the CMS API.
package cmsmodel

import (
	"time"

	"github.com/jrsteele09/go-cms-client/users"
)

// Paginated is the list envelope returned by collection endpoints.
type Paginated[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "draft"
	ArticlePublished ArticleStatus = "published"
)

type Topic struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type TopicInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

type SocialMeta struct {
	OGTitle            string `json:"og_title,omitempty"`
	OGDescription      string `json:"og_description,omitempty"`
	OGImage            string `json:"og_image,omitempty"`
	TwitterCard        string `json:"twitter_card,omitempty"`
	TwitterTitle       string `json:"twitter_title,omitempty"`
	TwitterDescription string `json:"twitter_description,omitempty"`
	TwitterImage       string `json:"twitter_image,omitempty"`
}

type Article struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	Author      users.User    `json:"author"`
	Topic       *Topic        `json:"topic"`
	HeroImage   *Media        `json:"hero_image"`
	Status      ArticleStatus `json:"status"`
	IsPublished bool          `json:"is_published"`
	PublishedAt *time.Time    `json:"published_at"`
	WordCount   int           `json:"word_count"`
	ReadingTime int           `json:"reading_time"`
	ViewCount   int           `json:"view_count"`
	SocialMeta  *SocialMeta   `json:"social_meta,omitempty"`
	Series      *string       `json:"series,omitempty"`
	SeriesOrder int           `json:"series_order,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// ArticleInput creates or replaces an article.
type ArticleInput struct {
	Title      string        `json:"title"`
	Slug       string        `json:"slug"`
	Content    string        `json:"content"`
	Excerpt    string        `json:"excerpt,omitempty"`
	Topic      *string       `json:"topic,omitempty"`
	HeroImage  *string       `json:"hero_image,omitempty"`
	Status     ArticleStatus `json:"status,omitempty"`
	SocialMeta *SocialMeta   `json:"social_meta,omitempty"`
}

// Form returns the fields checked by validation.ArticleSchema.
func (a ArticleInput) Form() map[string]string {
	return map[string]string{
		"title":   a.Title,
		"slug":    a.Slug,
		"excerpt": a.Excerpt,
		"content": a.Content,
	}
}

type Page struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Slug            string    `json:"slug"`
	Content         string    `json:"content"`
	MetaDescription string    `json:"meta_description,omitempty"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type PageInput struct {
	Title           string `json:"title"`
	Slug            string `json:"slug"`
	Content         string `json:"content"`
	MetaDescription string `json:"meta_description,omitempty"`
	IsPublished     bool   `json:"is_published"`
}

type Media struct {
	ID         string     `json:"id"`
	File       string     `json:"file"`
	FileName   string     `json:"file_name"`
	FileSize   int64      `json:"file_size"`
	MimeType   string     `json:"mime_type"`
	UploadedBy users.User `json:"uploaded_by"`
	AltText    string     `json:"alt_text"`
	IsPublic   bool       `json:"is_public"`
	UploadedAt time.Time  `json:"uploaded_at"`
}

type MediaStats struct {
	TotalFiles   int            `json:"total_files"`
	TotalSizeMB  float64        `json:"total_size_mb"`
	ByMimeType   map[string]int `json:"by_mime_type,omitempty"`
	StorageLimit float64        `json:"storage_limit_mb,omitempty"`
}

type Series struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Slug         string       `json:"slug"`
	Description  string       `json:"description"`
	CoverImage   *SeriesCover `json:"cover_image,omitempty"`
	Account      string       `json:"account,omitempty"`
	ArticleCount int          `json:"article_count"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

type SeriesCover struct {
	ID       string `json:"id"`
	File     string `json:"file"`
	FileName string `json:"file_name"`
}

type SeriesArticle struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Excerpt     string        `json:"excerpt"`
	SeriesOrder int           `json:"series_order"`
	PublishedAt *time.Time    `json:"published_at,omitempty"`
	Status      ArticleStatus `json:"status"`
	WordCount   int           `json:"word_count"`
	ReadingTime int           `json:"reading_time"`
	Author      users.User    `json:"author"`
}

// SeriesDetail is a series with its ordered articles.
type SeriesDetail struct {
	Series   Series          `json:"series"`
	Articles []SeriesArticle `json:"articles"`
}

// SeriesListing is the article index requested with include_series.
type SeriesListing struct {
	Series []Series `json:"series"`
}

type SeriesInput struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"cover_image,omitempty"`
}

// SeriesAssignment moves an article in or out of a series. A nil Series
// removes it.
type SeriesAssignment struct {
	Series      *string `json:"series"`
	SeriesOrder *int    `json:"series_order,omitempty"`
}
