package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"roomcompare/internal/config"
	"roomcompare/internal/dto"
	"roomcompare/internal/logger"
	"roomcompare/internal/middleware"
	"roomcompare/internal/repository/sqlite"
	"roomcompare/internal/service"
	"roomcompare/internal/service/annotate"
	"roomcompare/internal/service/compare"
	"roomcompare/internal/service/compare/comparetest"
	"roomcompare/internal/service/session"
	hub "roomcompare/internal/service/websocket"

	"github.com/stretchr/testify/require"
)

const testSessionID = "0b6a4f4e-8f4b-4a43-9d55-3c1f2f1f7a10"

type harness struct {
	cfg     *config.Config
	manager *service.Manager
	backend *comparetest.Server
	history *sqlite.ComparisonRepository
}

func newHarness(t *testing.T, minInterval time.Duration) *harness {
	t.Helper()

	backend := comparetest.NewServer(comparetest.FullResponse())
	t.Cleanup(backend.Close)

	db, err := sqlite.New(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	history := sqlite.NewComparisonRepository(db)

	log := logger.Discard()
	store := session.NewStore(session.Options{
		Comparer:    compare.NewClient(backend.URL, 5*time.Second),
		History:     history,
		Logger:      log,
		MinInterval: minInterval,
	}, time.Hour)
	t.Cleanup(store.CloseAll)

	wsHub := hub.NewHubService(log)
	ctx, cancel := context.WithCancel(context.Background())
	go wsHub.Run(ctx)
	t.Cleanup(cancel)

	return &harness{
		cfg:     &config.Config{MaxUploadBytes: 1 << 20, LogDirectory: t.TempDir()},
		manager: service.NewManager(store, wsHub, annotate.NewRenderer(log), history, log),
		backend: backend,
		history: history,
	}
}

// serve runs handler for req as the test session.
func (h *harness) serve(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	return h.serveAs(testSessionID, handler, req)
}

// serveAs runs handler for req as the session with the given id.
func (h *harness) serveAs(sessionID string, handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) session() *session.Session {
	return h.manager.Session(testSessionID)
}

// loadImages uploads a 400x200 clean image and a 100x200 messy image.
func (h *harness) loadImages(t *testing.T) {
	t.Helper()
	upload := UploadImageHandler(h.manager, h.cfg, logger.Discard())

	rec := h.serve(upload, uploadRequest(t, "clean", "clean.png", pngBytes(t, 400, 200)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = h.serve(upload, uploadRequest(t, "messy", "messy.png", pngBytes(t, 100, 200)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

// compareAndWait starts a comparison and waits for its result.
func (h *harness) compareAndWait(t *testing.T) dto.Snapshot {
	t.Helper()

	rec := h.serve(CompareHandler(h.manager, logger.Discard()), httptest.NewRequest(http.MethodPost, "/api/compare", nil))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		snap := h.session().Snapshot()
		return !snap.Loading && len(snap.Groups) == 3
	}, 5*time.Second, 10*time.Millisecond)
	return h.session().Snapshot()
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 240, G: 240, B: 240, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func uploadRequest(t *testing.T, slot, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images?slot="+slot, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func jsonRequest(t *testing.T, method, target string, v interface{}) *http.Request {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
