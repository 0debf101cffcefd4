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

func TestServiceFromForm(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantPrice float64
		wantErr   string
	}{
		{"price", url.Values{"name": {"Screen"}, "price": {"1499.50"}}, 1499.50, ""},
		{"empty price", url.Values{"name": {"Diagnosis"}, "price": {""}}, 0, ""},
		{"missing name", url.Values{"price": {"10"}}, 0, msgServiceNameRequired},
		{"negative price", url.Values{"name": {"X"}, "price": {"-1"}}, 0, msgServiceInvalidPrice},
		{"garbage price", url.Values{"name": {"X"}, "price": {"ten"}}, 0, msgServiceInvalidPrice},
		{"nan price", url.Values{"name": {"X"}, "price": {"NaN"}}, 0, msgServiceInvalidPrice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := formRequest(http.MethodPost, "/admin/services", tt.values)
			require.NoError(t, req.ParseForm())
			svc, errMsg := serviceFromForm(req)
			assert.Equal(t, tt.wantErr, errMsg)
			assert.Equal(t, tt.wantPrice, svc.Price)
		})
	}
}

func TestServicesCreateAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	h := NewServicesHandler(env.store, env.renderer)

	rec := env.serve(h.Create, formRequest(http.MethodPost, "/admin/services", url.Values{
		"name": {"Battery Replacement"}, "icon": {"fas fa-battery-full"}, "price": {"1500"},
	}))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	services, err := env.store.ListServices(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, services, 1)
	svc := services[0]
	assert.Equal(t, model.ServiceStatusActive, svc.Status)
	assert.Equal(t, 1500.0, svc.Price)

	req := formRequest(http.MethodPost, "/admin/services/"+svc.ID, url.Values{
		"name": {"Battery Replacement"}, "price": {"1800"}, "status": {"inactive"},
	})
	rec = env.serve(h.Update, withURLParam(req, "id", svc.ID))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	got, err := env.store.GetService(context.Background(), svc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ServiceStatusInactive, got.Status)
	assert.Equal(t, 1800.0, got.Price)

	active, err := env.store.ListServices(context.Background(), model.ServiceStatusActive)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestServicesCreateInvalidRerendersForm(t *testing.T) {
	env := newTestEnv(t)
	h := NewServicesHandler(env.store, env.renderer)

	rec := env.serve(h.Create, formRequest(http.MethodPost, "/admin/services", url.Values{
		"name": {"Water Damage"}, "price": {"-5"},
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := bodyString(t, rec)
	assert.Contains(t, body, msgServiceInvalidPrice)
	assert.Contains(t, body, `value="Water Damage"`)
}

func TestServicesEditAndDelete(t *testing.T) {
	env := newTestEnv(t)
	h := NewServicesHandler(env.store, env.renderer)

	svc := model.Service{Name: "Software Update", Status: model.ServiceStatusActive}
	require.NoError(t, env.store.CreateService(context.Background(), &svc))

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/admin/services/"+svc.ID, nil), "id", svc.ID)
	rec := env.serve(h.EditForm, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, bodyString(t, rec), "Software Update")

	req = withURLParam(httptest.NewRequest(http.MethodPost, "/admin/services/"+svc.ID+"/delete", nil), "id", svc.ID)
	rec = env.serve(h.Delete, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	n, err := env.store.CountServices(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
