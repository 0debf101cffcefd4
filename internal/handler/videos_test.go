// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mobidoc/internal/model"
)

func TestVideosCreate(t *testing.T) {
	env := newTestEnv(t)
	h := NewVideosHandler(env.store, env.renderer)

	rec := env.serve(h.Create, formRequest(http.MethodPost, "/admin/videos", url.Values{
		"title": {"Replacing an iPhone battery"}, "video_id": {" dQw4w9WgXcQ "},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	videos, err := env.store.ListVideos(context.Background())
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "dQw4w9WgXcQ", videos[0].VideoID)
	assert.Equal(t, model.DefaultVideoCategory, videos[0].Category)
}

func TestVideosCreateRequiresIDAndTitle(t *testing.T) {
	env := newTestEnv(t)
	h := NewVideosHandler(env.store, env.renderer)

	rec := env.serve(h.Create, formRequest(http.MethodPost, "/admin/videos", url.Values{"title": {"No id"}}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, bodyString(t, rec), msgVideoRequiredFields)

	n, err := env.store.CountVideos(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestVideosDelete(t *testing.T) {
	env := newTestEnv(t)
	h := NewVideosHandler(env.store, env.renderer)

	v := model.Video{Title: "Clip", VideoID: "abc", Category: "general"}
	require.NoError(t, env.store.CreateVideo(context.Background(), &v))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/videos/"+v.ID+"/delete", nil), "id", v.ID)
	rec := env.serve(h.Delete, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	n, err := env.store.CountVideos(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
