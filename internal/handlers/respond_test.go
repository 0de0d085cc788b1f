package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/AnshRaj112/socialapp-backend/internal/apperr"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWriteErrorHidesInternalCauses(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/posts/getAllPosts", nil)
	writeError(w, r, zap.New(core), apperr.Internal("store failure", errors.New("connection refused")))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "error", body.Status)
	require.Equal(t, "Internal server error", body.Message)
	require.NotContains(t, w.Body.String(), "connection refused")
	require.Equal(t, 1, logs.Len())
}

func TestWriteErrorStatuses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err    error
		status int
	}{
		{apperr.NotFound("Post not found"), http.StatusNotFound},
		{apperr.Conflict("Username already exists"), http.StatusBadRequest},
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.Auth("Invalid token"), http.StatusUnauthorized},
		{apperr.Forbidden("no"), http.StatusForbidden},
		{apperr.ExternalStorage("Failed to upload image", errors.New("boom")), http.StatusBadGateway},
		{errors.New("untyped"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		writeError(w, httptest.NewRequest(http.MethodGet, "/", nil), zap.NewNop(), tt.err)
		require.Equal(t, tt.status, w.Code, tt.err.Error())
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	var v struct{ Content string }
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"hi"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &v))
	require.Equal(t, "hi", v.Content)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), r, &v))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":`))
	err := decodeJSON(httptest.NewRecorder(), r, &v)
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestFormImage(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("text", "caption"))
	fw, err := mw.CreateFormFile("image", "a.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	require.True(t, isMultipart(r))
	require.NoError(t, parseMultipart(httptest.NewRecorder(), r))

	f, err := formImage(r, "image")
	require.NoError(t, err)
	require.NotNil(t, f)
	require.Equal(t, "a.png", f.Filename)

	missing, err := formImage(r, "coverImage")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPathID(t *testing.T) {
	t.Parallel()

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "zzz")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(contextWithRoute(r, rctx))

	_, err := pathID(r, "id")
	require.True(t, apperr.Is(err, apperr.KindValidation))
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}
