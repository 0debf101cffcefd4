// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package seo

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"
)

func TestSitemapBuilderAddHomepage(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	builder.AddHomepage()

	if len(builder.urls) != 1 {
		t.Fatalf("urls length = %d, want 1", len(builder.urls))
	}

	url := builder.urls[0]
	if url.Loc != "https://example.com/" {
		t.Errorf("Loc = %q, want %q", url.Loc, "https://example.com/")
	}
	if url.Priority != "1.0" {
		t.Errorf("Priority = %q, want %q", url.Priority, "1.0")
	}
	if url.ChangeFreq != ChangeFreqDaily {
		t.Errorf("ChangeFreq = %q, want %q", url.ChangeFreq, ChangeFreqDaily)
	}
}

func TestSitemapBuilderAddPost(t *testing.T) {
	builder := NewSitemapBuilder("https://example.com")
	updatedAt := time.Date(2025, 1, 15, 10, 0, 0, 0, time.FixedZone("IST", 19800))

	builder.AddPost(SitemapPost{ID: "abc", UpdatedAt: updatedAt})
	builder.AddPost(SitemapPost{ID: "def"})

	if got := builder.urls[0].Loc; got != "https://example.com/post/abc" {
		t.Errorf("Loc = %q", got)
	}
	if got := builder.urls[0].LastMod; got != "2025-01-15T04:30:00Z" {
		t.Errorf("LastMod = %q, want UTC RFC3339", got)
	}
	if got := builder.urls[1].LastMod; got != "" {
		t.Errorf("LastMod = %q, want empty for zero time", got)
	}
}

func TestGenerateSitemap(t *testing.T) {
	data, err := GenerateSitemap("https://example.com", []SitemapPost{{ID: "abc"}})
	if err != nil {
		t.Fatalf("GenerateSitemap() error = %v", err)
	}

	out := string(data)
	if !strings.HasPrefix(out, xml.Header) {
		t.Error("sitemap should start with the XML header")
	}
	if !strings.Contains(out, `xmlns="`+XMLNamespace+`"`) {
		t.Error("sitemap should declare the sitemap namespace")
	}

	var parsed Sitemap
	if err := xml.Unmarshal(data[len(xml.Header):], &parsed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if want := 1 + len(StaticPages) + 1; len(parsed.URLs) != want {
		t.Errorf("URL count = %d, want %d", len(parsed.URLs), want)
	}
	for _, p := range StaticPages {
		if !strings.Contains(out, "<loc>https://example.com"+p.Path+"</loc>") {
			t.Errorf("sitemap missing %s", p.Path)
		}
	}
}
