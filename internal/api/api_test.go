package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediapoint/roster/internal/config"
	"github.com/mediapoint/roster/internal/pkg/distlock"
	"github.com/mediapoint/roster/internal/roster"
	"github.com/mediapoint/roster/internal/runstate"
	"github.com/mediapoint/roster/internal/service/processing"
	"github.com/mediapoint/roster/internal/storage"
	"github.com/mediapoint/roster/internal/workbook"
)

var header = []string{
	"Land", "Email", "Postcode", "Straat", "Huisnummer", "Toevoeging", "Plaats",
	"Tussenvoegsel", "Naam", "Voornaam", "Abonneenummer", "Contractnummer",
	"Geboortedatum", "Vanaf", "Pas fysiek", "Pas digitaal", "Toorts",
}

func rosterFile(t *testing.T, rows ...[]any) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf, []roster.View{{Name: "Bron", Columns: header, Rows: rows}}))
	return buf.Bytes()
}

func validRoster(t *testing.T) []byte {
	return rosterFile(t,
		[]any{"Nederland", "a@example.nl", "1234AB", "Dorpsweg", 5, "", "Ede", "", "Smit", "Anna", 11, 70, "02-03-1971", "01-01-2019", "Ja", "Ja", 0},
		[]any{"Nederland", "a@example.nl", "1234AB", "Dorpsweg", 5, "", "Ede", "", "Smit", "Bas", 12, 70, "09-09-1969", "01-01-2019", "Ja", "Ja", 0},
	)
}

type fixture struct {
	handler http.Handler
	blobs   *storage.LocalStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	blobs, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	key := "api:" + t.Name()
	svc := processing.NewService(blobs, runstate.NewMemoryStore(), roster.New(roster.DefaultOptions()),
		func() distlock.DistLock { return distlock.NewLocalLock(key) },
		processing.Keys{Source: "Bron.xlsx", Output: "Modified_Bron.xlsx"},
	)
	cfg := config.Default().Server
	cfg.UploadLimitMB = 1
	srv, err := NewServer(cfg, svc, NewHealthChecker(nil, nil, blobs))
	require.NoError(t, err)
	return fixture{handler: srv.Handler(), blobs: blobs}
}

func (f fixture) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, req)
	return rr
}

func (f fixture) upload(t *testing.T, name string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return f.do(t, req)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func TestIndex(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rr.Body.String(), "<title>Media Point Excel Processor</title>")
	assert.Contains(t, rr.Body.String(), "Upload Bron.xlsx")
	assert.Contains(t, rr.Body.String(), "Download Modified_Bron.xlsx")
}

func TestRenderIndexEscapesTitle(t *testing.T) {
	out, err := renderIndex("<b>Roster</b>", "in.xlsx", "out.xlsx")
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;Roster&lt;/b&gt;")
	assert.NotContains(t, out, "<b>Roster</b>")
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "ok", body["status"])
	checks := body["checks"].(map[string]any)
	assert.Equal(t, "up", checks["storage"].(map[string]any)["status"])
}

func TestHealth_RedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	hc := NewHealthChecker(nil, client, nil)
	rr := httptest.NewRecorder()
	hc.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", decode(t, rr)["status"])

	down := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { down.Close() })
	hc = NewHealthChecker(nil, down, nil)
	rr = httptest.NewRecorder()
	hc.HandleHealth(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "down", body["checks"].(map[string]any)["redis"].(map[string]any)["status"])
}

func TestUpload_RejectsNonXLSX(t *testing.T) {
	f := newFixture(t)

	rr := f.upload(t, "Bron.csv", []byte("a,b"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Only .xlsx files are supported", decode(t, rr)["message"])
}

func TestUpload_MissingFile(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "none"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := f.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	f := newFixture(t)

	rr := f.upload(t, "Bron.xlsx", bytes.Repeat([]byte("x"), 2<<20))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestRun_BeforeUpload(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, httptest.NewRequest(http.MethodPost, "/run", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Please upload Bron.xlsx first.", decode(t, rr)["message"])
}

func TestRun_RosterError(t *testing.T) {
	f := newFixture(t)

	bad := rosterFile(t,
		[]any{"Nederland", "a@example.nl", "1234AB", "Dorpsweg", 5, "", "Ede", "", "Smit", "Anna", 11, 70, "morgen", "01-01-2019", "Ja", "Ja", 0},
	)
	require.Equal(t, http.StatusOK, f.upload(t, "Bron.xlsx", bad).Code)

	rr := f.do(t, httptest.NewRequest(http.MethodPost, "/run", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	msg := decode(t, rr)["message"].(string)
	assert.Contains(t, msg, "Failed to process file: ")
	assert.Contains(t, msg, "morgen")
}

func TestRun_NotAWorkbook(t *testing.T) {
	f := newFixture(t)

	require.Equal(t, http.StatusOK, f.upload(t, "Bron.xlsx", []byte("not a zip")).Code)
	rr := f.do(t, httptest.NewRequest(http.MethodPost, "/run", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestFail_RosterReplaced(t *testing.T) {
	svc := processing.NewService(nil, nil, nil, nil, processing.Keys{Source: "Bron.xlsx", Output: "Modified_Bron.xlsx"})
	h := &Handlers{svc: svc}

	rr := httptest.NewRecorder()
	h.fail(rr, fmt.Errorf("run: %w", processing.ErrSourceReplaced))
	assert.Equal(t, http.StatusConflict, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "roster_replaced", body["code"])
	assert.Equal(t, "Bron.xlsx was replaced while it was processed. Run the processor again.", body["message"])
}

func TestDownload_NotReady(t *testing.T) {
	f := newFixture(t)

	rr := f.do(t, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Modified_Bron.xlsx not found. Run the processor first.", decode(t, rr)["message"])
}

func TestWorkflow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rr := f.upload(t, "Bron.xlsx", validRoster(t))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]any{"message": "Upload successful", "path": "Bron.xlsx"}, decode(t, rr))

	rr = f.do(t, httptest.NewRequest(http.MethodGet, "/status", nil))
	status := decode(t, rr)
	assert.Equal(t, true, status["uploaded"])
	assert.Equal(t, false, status["processed"])

	rr = f.do(t, httptest.NewRequest(http.MethodPost, "/run", nil))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decode(t, rr)
	assert.Equal(t, "File processed successfully.", body["message"])
	assert.NotEmpty(t, body["run_id"])
	assert.EqualValues(t, 2, body["summary"].(map[string]any)["records"])

	rr = f.do(t, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, true, decode(t, rr)["processed"])

	rr = f.do(t, httptest.NewRequest(http.MethodGet, "/download", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Modified_Bron.xlsx"`, rr.Header().Get("Content-Disposition"))

	table, err := workbook.Read(bytes.NewReader(rr.Body.Bytes()))
	require.NoError(t, err)
	assert.Len(t, table.Rows, 2)

	// Files are gone after a completed download.
	for _, key := range []string{"Bron.xlsx", "Modified_Bron.xlsx"} {
		ok, err := f.blobs.Exists(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}
	rr = f.do(t, httptest.NewRequest(http.MethodGet, "/status", nil))
	status = decode(t, rr)
	assert.Equal(t, false, status["uploaded"])
	assert.Equal(t, false, status["processed"])

	rr = f.do(t, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCORS(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodOptions, "/run", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := f.do(t, req)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
