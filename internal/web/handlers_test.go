package web

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/JonMunkholm/casemaster/internal/task"
	"github.com/JonMunkholm/casemaster/internal/ui"
)

type blockingImporter struct {
	release chan struct{}
}

func (b *blockingImporter) ProcessFile(ctx context.Context, f core.StagedFile) (string, error) {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return core.UploadSuccessPrefix + ": 1 records imported from " + f.Name, nil
}

type noReports struct{}

func (noReports) GenerateReport(context.Context, string) ([]byte, error) {
	return nil, core.NotFoundError("report.generate", "No records found")
}

type testEnv struct {
	server  *Server
	loop    *task.Loop
	machine *ui.Machine
	staging string
}

func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080, RequestTimeout: 5 * time.Second},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, StagingDir: t.TempDir()},
	}
	if mutate != nil {
		mutate(cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	loop := task.NewLoop(0)
	go loop.Run(ctx)

	imp := &blockingImporter{release: make(chan struct{})}
	machine := ui.NewMachine(ui.Options{
		Importer:   imp,
		Reports:    noReports{},
		Dispatcher: loop,
		Clock:      task.NewFakeClock(),
		Context:    ctx,
	})

	t.Cleanup(func() {
		close(imp.release)
		cancel()
		<-loop.Done()
	})

	return &testEnv{
		server:  NewServer(cfg, loop, machine),
		loop:    loop,
		machine: machine,
		staging: cfg.Upload.StagingDir,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.server.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) state(t *testing.T) string {
	t.Helper()
	var name string
	if err := e.loop.Call(context.Background(), func() { name = e.machine.State().Name() }); err != nil {
		t.Fatal(err)
	}
	return name
}

func uploadRequest(t *testing.T, path, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mp := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mp.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		part.Write(content)
	}
	mp.Close()

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mp.FormDataContentType())
	return req
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) ui.View {
	t.Helper()
	var v ui.View
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode view: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestHandlePage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-state="idle"`) || !strings.Contains(body, "Upload File") {
		t.Errorf("page does not show idle state:\n%s", body)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}
}

func TestHandleState(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	v := decodeView(t, rec)
	if v.State != "idle" || v.Message != ui.MsgIdle || !v.ShowUpload {
		t.Errorf("view = %+v", v)
	}
}

func TestHandleSelect_StagesFile(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(uploadRequest(t, "/select", "cases.xlsx", []byte("xlsx-bytes")))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := env.state(t); got != "file_selected" {
		t.Fatalf("state = %q, want file_selected", got)
	}

	entries, err := os.ReadDir(env.staging)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasSuffix(entries[0].Name(), "cases.xlsx") {
		t.Errorf("staging dir = %v, want one staged cases.xlsx", entries)
	}
}

// lateCaller gives up on every call and keeps the action so a test can run
// it afterwards, as the loop would after the request context expired.
type lateCaller struct {
	pending []func()
}

func (c *lateCaller) Call(_ context.Context, fn func()) error {
	c.pending = append(c.pending, fn)
	return context.DeadlineExceeded
}

func TestHandleSelect_AbandonedCall(t *testing.T) {
	tests := []struct {
		name    string
		runLate bool
	}{
		{"action never runs", false},
		{"action runs after the handler gave up", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			caller := &lateCaller{}
			srv := NewServer(env.server.cfg, caller, env.machine)

			rec := httptest.NewRecorder()
			srv.Router().ServeHTTP(rec, uploadRequest(t, "/select", "cases.xlsx", []byte("xlsx-bytes")))
			if rec.Code != http.StatusServiceUnavailable {
				t.Fatalf("status = %d, want 503", rec.Code)
			}

			if tt.runLate {
				for _, fn := range caller.pending {
					if err := env.loop.Call(context.Background(), fn); err != nil {
						t.Fatal(err)
					}
				}
			}

			if got := env.state(t); got != "idle" {
				t.Errorf("state = %q, want idle", got)
			}
			entries, err := os.ReadDir(env.staging)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("staging dir = %v, want empty", entries)
			}
		})
	}
}

func TestHandleSelect_NoFileCancels(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(uploadRequest(t, "/api/select", "", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if v := decodeView(t, rec); v.State != "idle" {
		t.Errorf("state = %q, want idle", v.State)
	}
}

func TestHandleSelect_TooLarge(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.Upload.MaxFileSize = 64 })

	rec := env.do(uploadRequest(t, "/api/select", "big.xlsx", bytes.Repeat([]byte("x"), 1024)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Code != "VAL003" {
		t.Errorf("code = %q, want VAL003", resp.Code)
	}
	if got := env.state(t); got != "idle" {
		t.Errorf("state = %q, want idle", got)
	}
}

func TestHandleSubmit(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/submit", nil)
	v := decodeView(t, env.do(req))
	if v.State != "idle" || v.Message != ui.MsgSelectFirst {
		t.Errorf("submit without file: view = %+v", v)
	}

	env.do(uploadRequest(t, "/select", "cases.xlsx", []byte("x")))

	v = decodeView(t, env.do(httptest.NewRequest(http.MethodPost, "/api/submit", nil)))
	if v.State != "processing" || !v.ShowProgress {
		t.Errorf("submit: view = %+v", v)
	}
}

func TestHandleReport_IgnoredOutsidePrompt(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/report", strings.NewReader("file_name=cases.xlsx"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	v := decodeView(t, env.do(req))
	if v.State != "idle" {
		t.Errorf("state = %q, want idle", v.State)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) {
		c.Security = config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"secret"}}
	})

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/api/state", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key: status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.Header.Set("X-API-Key", "secret")
	if rec := env.do(req); rec.Code != http.StatusOK {
		t.Errorf("with key: status = %d, want 200", rec.Code)
	}

	if rec := env.do(httptest.NewRequest(http.MethodGet, "/", nil)); rec.Code != http.StatusOK {
		t.Errorf("page: status = %d, want 200", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"state":"idle"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestHandleEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	ts := httptest.NewServer(env.server.Router())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	next := func() string {
		t.Helper()
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read event: %v", err)
			}
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimPrefix(line, "data: ")
			}
		}
	}

	if first := next(); !strings.Contains(first, `"state":"idle"`) {
		t.Fatalf("first event = %s", first)
	}

	env.do(uploadRequest(t, "/select", "cases.xlsx", []byte("x")))

	second := next()
	if !strings.Contains(second, `"state":"file_selected"`) || !strings.Contains(second, `"html"`) {
		t.Errorf("second event = %s", second)
	}
}
