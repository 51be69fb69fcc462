// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog-go/internal/middleware"
	"github.com/olegiv/oblog-go/internal/session"
	"github.com/olegiv/oblog-go/internal/testutil"
)

// setupApp wires the full router the way the binary does, minus CSRF.
func setupApp(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	db := testutil.TestDB(t)
	testutil.CreateTestUser(t, db, "author@example.com", "password123")

	sm := session.New(db, true)
	ah := NewAuthHandler(db, sm, nil)
	ph := NewPostsHandler(db, nil)

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Post("/login", ah.Login)
	r.Post("/logout", ah.Logout)
	r.Route("/admin/api", func(r chi.Router) {
		r.Use(middleware.Auth(sm))
		r.Use(middleware.LoadUser(sm, db))
		r.Get("/posts", ph.List)
		r.Post("/posts", ph.Create)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return srv, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, payload any) *http.Response {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestLoginSuccess(t *testing.T) {
	srv, client := setupApp(t)

	resp := postJSON(t, client, srv.URL+"/login", map[string]string{
		"email":    "author@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "author@example.com", data["email"])
}

func TestLoginFailureIsGeneric(t *testing.T) {
	srv, client := setupApp(t)

	wrongPassword := postJSON(t, client, srv.URL+"/login", map[string]string{
		"email":    "author@example.com",
		"password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, wrongPassword.StatusCode)
	wrongBody := decodeBody(t, wrongPassword)

	unknownUser := postJSON(t, client, srv.URL+"/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusUnauthorized, unknownUser.StatusCode)
	unknownBody := decodeBody(t, unknownUser)

	// Wrong password and unknown account must be indistinguishable.
	assert.Equal(t, wrongBody, unknownBody)
}

func TestLoginMissingFields(t *testing.T) {
	srv, client := setupApp(t)

	resp := postJSON(t, client, srv.URL+"/login", map[string]string{})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	_ = resp.Body.Close()
}

func TestAdminRequiresSession(t *testing.T) {
	srv, client := setupApp(t)

	resp, err := client.Get(srv.URL + "/admin/api/posts")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLoginGrantsAdminAccess(t *testing.T) {
	srv, client := setupApp(t)

	login := postJSON(t, client, srv.URL+"/login", map[string]string{
		"email":    "author@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, login.StatusCode)
	_ = login.Body.Close()

	create := postJSON(t, client, srv.URL+"/admin/api/posts", map[string]any{
		"title":   "Session Post",
		"content": "Body",
	})
	require.Equal(t, http.StatusCreated, create.StatusCode)
	created := decodeBody(t, create)
	data := created["data"].(map[string]any)
	assert.Equal(t, "session-post", data["slug"])

	list, err := client.Get(srv.URL + "/admin/api/posts")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, list.StatusCode)
	listBody := decodeBody(t, list)
	assert.Len(t, listBody["data"].([]any), 1)
}

func TestLogoutEndsSession(t *testing.T) {
	srv, client := setupApp(t)

	login := postJSON(t, client, srv.URL+"/login", map[string]string{
		"email":    "author@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, login.StatusCode)
	_ = login.Body.Close()

	logout := postJSON(t, client, srv.URL+"/logout", nil)
	require.Equal(t, http.StatusOK, logout.StatusCode)
	_ = logout.Body.Close()

	resp, err := client.Get(srv.URL + "/admin/api/posts")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminCreateValidationError(t *testing.T) {
	srv, client := setupApp(t)

	login := postJSON(t, client, srv.URL+"/login", map[string]string{
		"email":    "author@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, login.StatusCode)
	_ = login.Body.Close()

	resp := postJSON(t, client, srv.URL+"/admin/api/posts", map[string]any{
		"title": "",
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(t, resp)
	errObj := body["error"].(map[string]any)
	assert.Equal(t, "validation_error", errObj["code"])
	details := errObj["details"].(map[string]any)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "content")
}
