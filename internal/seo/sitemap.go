// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the sitemap.xml and robots.txt documents for the
// public site.
package seo

import (
	"encoding/xml"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// SitemapPost contains data needed to add a published post to the sitemap.
type SitemapPost struct {
	ID        string
	UpdatedAt time.Time
}

// StaticPage is a fixed public page listed in every sitemap.
type StaticPage struct {
	Path       string
	ChangeFreq ChangeFreq
	Priority   string
}

// StaticPages are the public pages other than the homepage.
var StaticPages = []StaticPage{
	{Path: "/services", ChangeFreq: ChangeFreqWeekly, Priority: "0.9"},
	{Path: "/posts", ChangeFreq: ChangeFreqDaily, Priority: "0.8"},
	{Path: "/gallery", ChangeFreq: ChangeFreqWeekly, Priority: "0.6"},
	{Path: "/youtube", ChangeFreq: ChangeFreqWeekly, Priority: "0.6"},
	{Path: "/contact", ChangeFreq: ChangeFreqMonthly, Priority: "0.7"},
}

// SitemapBuilder builds sitemap XML from the site's pages and posts.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: siteURL,
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddStatic adds a fixed page.
func (b *SitemapBuilder) AddStatic(p StaticPage) {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + p.Path,
		ChangeFreq: p.ChangeFreq,
		Priority:   p.Priority,
	})
}

// AddPost adds a post detail page.
func (b *SitemapBuilder) AddPost(post SitemapPost) {
	url := SitemapURL{
		Loc:        b.siteURL + "/post/" + post.ID,
		ChangeFreq: ChangeFreqMonthly,
		Priority:   "0.5",
	}
	if !post.UpdatedAt.IsZero() {
		url.LastMod = post.UpdatedAt.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, url)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap builds the sitemap of the homepage, the static pages and
// the given published posts.
func GenerateSitemap(siteURL string, posts []SitemapPost) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	builder.AddHomepage()
	for _, p := range StaticPages {
		builder.AddStatic(p)
	}
	for _, p := range posts {
		builder.AddPost(p)
	}
	return builder.Build()
}
