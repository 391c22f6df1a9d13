package media

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeStore struct {
	uploaded map[string][]byte
}

func (f *fakeStore) UploadMedia(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploaded[key] = b
	return f.MediaURL(key), nil
}

func (f *fakeStore) GeneratePresignedUploadURL(_ context.Context, key, _ string) (string, error) {
	return "https://signed.test/" + key + "?sig=1", nil
}

func (f *fakeStore) MediaURL(key string) string { return "https://cdn.test/" + key }

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func setup(t *testing.T, store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zaptest.NewLogger(t))
	r := gin.New()
	r.POST("/media/upload", h.Upload)
	r.POST("/media/upload-url", h.UploadURL)
	return r
}

func TestUpload(t *testing.T) {
	store := &fakeStore{uploaded: map[string][]byte{}}
	r := setup(t, store)

	body, ct := multipartBody(t, "banner.png", "image/png", []byte("pngdata"))
	req := httptest.NewRequest(http.MethodPost, "/media/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Data UploadResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "image", res.Data.Kind)
	assert.True(t, strings.HasSuffix(res.Data.Key, ".png"))
	assert.Equal(t, "https://cdn.test/"+res.Data.Key, res.Data.URL)
	assert.Equal(t, []byte("pngdata"), store.uploaded[res.Data.Key])
}

func TestUploadRejectsType(t *testing.T) {
	store := &fakeStore{uploaded: map[string][]byte{}}
	r := setup(t, store)

	body, ct := multipartBody(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/media/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, store.uploaded)
}

func TestUploadURL(t *testing.T) {
	r := setup(t, &fakeStore{uploaded: map[string][]byte{}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/media/upload-url", strings.NewReader(`{"filename":"clip.mp4","content_type":"video/mp4","file_size":52428800}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"upload_url":"https://signed.test/media/`)
	assert.Contains(t, w.Body.String(), `"kind":"video"`)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/media/upload-url", strings.NewReader(`{"filename":"huge.png","content_type":"image/png","file_size":20971520}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadWithoutStorage(t *testing.T) {
	r := setup(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/media/upload", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
