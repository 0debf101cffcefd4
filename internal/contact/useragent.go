// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package contact

import (
	"strings"

	"github.com/mileusna/useragent"
)

// SummarizeUserAgent reduces a User-Agent header to "browser / os / device".
// Unknown parts are omitted; an empty header gives "".
func SummarizeUserAgent(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	ua := useragent.Parse(header)

	var parts []string
	if ua.Name != "" {
		parts = append(parts, strings.TrimSpace(ua.Name+" "+majorVersion(ua.Version)))
	}
	if ua.OS != "" {
		parts = append(parts, strings.TrimSpace(ua.OS+" "+ua.OSVersion))
	}
	switch {
	case ua.Bot:
		parts = append(parts, "Bot")
	case ua.Device != "":
		parts = append(parts, ua.Device)
	case ua.Tablet:
		parts = append(parts, "Tablet")
	case ua.Mobile:
		parts = append(parts, "Mobile")
	case ua.Desktop:
		parts = append(parts, "Desktop")
	}
	return strings.Join(parts, " / ")
}

func majorVersion(v string) string {
	if i := strings.IndexByte(v, '.'); i > 0 {
		return v[:i]
	}
	return v
}
