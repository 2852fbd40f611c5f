package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/samvad-hq/context-probe/internal/config"
	"github.com/samvad-hq/context-probe/pkg/contextapi"
	"github.com/samvad-hq/context-probe/pkg/httpclient"
	"github.com/samvad-hq/context-probe/pkg/publishers"
)

type stubResponse struct {
	status int
	body   string
}

func (s stubResponse) Body() []byte         { return []byte(s.body) }
func (s stubResponse) StatusCode() int      { return s.status }
func (s stubResponse) Header(string) string { return "" }

// routedTransport answers by URL and records the order of requests.
type routedTransport struct {
	routes map[string]stubResponse
	errs   map[string]error
	calls  []string
}

func (r *routedTransport) Get(_ context.Context, url string, _ map[string]string) (httpclient.Response, error) {
	r.calls = append(r.calls, url)
	if err, ok := r.errs[url]; ok {
		return nil, err
	}
	if resp, ok := r.routes[url]; ok {
		return resp, nil
	}
	return stubResponse{status: http.StatusNotFound, body: "not found"}, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:                "context-probe",
		ClientID:               "cid",
		AccessToken:            "tok",
		APIKey:                 "key",
		APIBase:                "https://api.example.com/v2",
		DeployBase:             "https://deploy.example.com",
		HTTPTimeout:            time.Second,
		JournalType:            "bbolt",
		JournalPath:            filepath.Join(t.TempDir(), "probes.db"),
		JournalTTL:             time.Hour,
		JournalCleanupInterval: time.Hour,
	}
}

func newTestProber(t *testing.T, cfg *config.Config, tr httpclient.Client, format string) (*Prober, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	p, err := NewProber(context.Background(), cfg, nil, Options{
		Out:        &out,
		ErrOut:     &errOut,
		Format:     format,
		HTTPClient: tr,
	})
	if err != nil {
		t.Fatalf("NewProber: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p, &out, &errOut
}

func TestRunPrintsEachResultInOrder(t *testing.T) {
	tr := &routedTransport{routes: map[string]stubResponse{
		"https://api.example.com/v2/context":                    {status: 200, body: `{"general":true}`},
		"https://api.example.com/v2/context?type=content_style": {status: 200, body: `{"style":"dry"}`},
	}}
	p, out, errOut := newTestProber(t, testConfig(t), tr, "")

	client, err := p.BearerClient()
	if err != nil {
		t.Fatalf("BearerClient: %v", err)
	}
	if err := p.Run(context.Background(), GeneralProbe(client), ContentStyleProbe(client)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := "{\n  \"general\": true\n}\n{\n  \"style\": \"dry\"\n}\n"
	if out.String() != want {
		t.Fatalf("stdout = %q, want %q", out.String(), want)
	}
	if errOut.Len() != 0 {
		t.Fatalf("unexpected stderr %q", errOut.String())
	}
	if len(tr.calls) != 2 {
		t.Fatalf("expected 2 requests, got %v", tr.calls)
	}

	recs, err := p.History(0)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(recs) != 2 || recs[0].Probe != ProbeContentStyle || recs[0].Outcome != OutcomeOK || recs[0].Scheme != "bearer" {
		t.Fatalf("unexpected journal %#v", recs)
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	tr := &routedTransport{routes: map[string]stubResponse{
		"https://api.example.com/v2/context": {status: 401, body: `{"error":"unauthorized"}`},
	}}
	p, out, errOut := newTestProber(t, testConfig(t), tr, "")

	client, err := p.BearerClient()
	if err != nil {
		t.Fatalf("BearerClient: %v", err)
	}
	err = p.Run(context.Background(), GeneralProbe(client), ContentStyleProbe(client))

	var apiErr *contextapi.APIResponseError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Fatalf("expected 401 APIResponseError, got %v", err)
	}
	if len(tr.calls) != 1 {
		t.Fatalf("run should stop after first failure, calls=%v", tr.calls)
	}
	if out.Len() != 0 {
		t.Fatalf("nothing should reach stdout, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "general failed") || !strings.Contains(errOut.String(), `"error": "unauthorized"`) {
		t.Fatalf("stderr missing failure details: %q", errOut.String())
	}

	recs, _ := p.History(1)
	if len(recs) != 1 || recs[0].Outcome != OutcomeAPIResponse || recs[0].StatusCode != 401 {
		t.Fatalf("unexpected journal %#v", recs)
	}
}

func TestRunRecordsTransportFailure(t *testing.T) {
	url := "https://deploy.example.com/api/context?username=someone"
	tr := &routedTransport{errs: map[string]error{url: syscall.ECONNREFUSED}}
	p, _, errOut := newTestProber(t, testConfig(t), tr, "")

	client, err := p.APIKeyClient()
	if err != nil {
		t.Fatalf("APIKeyClient: %v", err)
	}
	err = p.Run(context.Background(), UserProbe(client, " someone "))
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Fatalf("expected connection refused, got %v", err)
	}
	if len(tr.calls) != 1 {
		t.Fatalf("expected exactly one attempt, got %d", len(tr.calls))
	}
	if !strings.Contains(errOut.String(), "user failed") {
		t.Fatalf("stderr = %q", errOut.String())
	}

	recs, _ := p.History(1)
	if len(recs) != 1 || recs[0].Outcome != OutcomeTransport || recs[0].URL != url {
		t.Fatalf("unexpected journal %#v", recs)
	}
}

func TestClientsRequireCredentials(t *testing.T) {
	cfg := testConfig(t)
	cfg.AccessToken = ""
	cfg.APIKey = " "
	p, _, _ := newTestProber(t, cfg, &routedTransport{}, "")

	var cfgErr *contextapi.ConfigurationError
	if _, err := p.BearerClient(); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for bearer client, got %v", err)
	}
	if _, err := p.APIKeyClient(); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for api key client, got %v", err)
	}
}

func TestRunRendersYAMLAndEmptyBodies(t *testing.T) {
	tr := &routedTransport{routes: map[string]stubResponse{
		"https://api.example.com/v2/context":                    {status: 200, body: `{"topics":["go","rust"]}`},
		"https://api.example.com/v2/context?type=content_style": {status: 204},
	}}
	p, out, _ := newTestProber(t, testConfig(t), tr, "yaml")

	client, err := p.BearerClient()
	if err != nil {
		t.Fatalf("BearerClient: %v", err)
	}
	if err := p.Run(context.Background(), GeneralProbe(client), ContentStyleProbe(client)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := "topics:\n  - go\n  - rust\nnull\n"
	if out.String() != want {
		t.Fatalf("stdout = %q, want %q", out.String(), want)
	}

	recs, _ := p.History(1)
	if len(recs) != 1 || recs[0].Outcome != OutcomeEmpty {
		t.Fatalf("expected empty outcome, got %#v", recs)
	}
}

func TestNewProberRejectsUnknownFormat(t *testing.T) {
	_, err := NewProber(context.Background(), testConfig(t), nil, Options{Format: "xml", HTTPClient: &routedTransport{}})
	if err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestRunPublishesReportsToSinks(t *testing.T) {
	var reports []publishers.Report
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rpt publishers.Report
		if err := json.NewDecoder(r.Body).Decode(&rpt); err != nil {
			t.Errorf("decode report: %v", err)
		}
		reports = append(reports, rpt)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer sink.Close()

	sinksFile := filepath.Join(t.TempDir(), "sinks.yaml")
	raw := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: " + sink.URL + "\n"
	if err := os.WriteFile(sinksFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write sinks file: %v", err)
	}

	cfg := testConfig(t)
	cfg.JournalType = "none"
	cfg.SinksFile = sinksFile
	tr := &routedTransport{routes: map[string]stubResponse{
		"https://api.example.com/v2/context": {status: 200, body: `{}`},
	}}
	p, _, _ := newTestProber(t, cfg, tr, "")

	client, err := p.BearerClient()
	if err != nil {
		t.Fatalf("BearerClient: %v", err)
	}
	if err := p.Run(context.Background(), GeneralProbe(client)); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(reports) != 1 || reports[0].Probe != ProbeGeneral || reports[0].Outcome != OutcomeOK || reports[0].App != "context-probe" {
		t.Fatalf("unexpected reports %#v", reports)
	}
}

func TestPrintHistoryRendersEmptyList(t *testing.T) {
	cfg := testConfig(t)
	cfg.JournalType = "none"
	p, out, _ := newTestProber(t, cfg, &routedTransport{}, "")

	recs, err := p.History(5)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if err := p.PrintHistory(recs); err != nil {
		t.Fatalf("PrintHistory: %v", err)
	}
	if out.String() != "[]\n" {
		t.Fatalf("stdout = %q", out.String())
	}
}

func TestRenderYAMLKeepsNumbersAndKeyOrder(t *testing.T) {
	doc := json.RawMessage(`{"id":12345678901234567890,"count":9007199254740993,"ratio":0.25,"code":"007","active":true,"note":null,"tags":[]}`)

	got, err := render(doc, FormatYAML)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "id: 12345678901234567890\n" +
		"count: 9007199254740993\n" +
		"ratio: 0.25\n" +
		"code: \"007\"\n" +
		"active: true\n" +
		"note: null\n" +
		"tags: []\n"
	if string(got) != want {
		t.Fatalf("yaml = %q, want %q", got, want)
	}
}

func TestUserProbeWithBlankUsernameSendsNothing(t *testing.T) {
	tr := &routedTransport{}
	p, out, errOut := newTestProber(t, testConfig(t), tr, "")

	client, err := p.APIKeyClient()
	if err != nil {
		t.Fatalf("APIKeyClient: %v", err)
	}
	err = p.Run(context.Background(), UserProbe(client, "   "))

	var cfgErr *contextapi.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "username" {
		t.Fatalf("expected username ConfigurationError, got %v", err)
	}
	if len(tr.calls) != 0 {
		t.Fatalf("no request should be sent, got %v", tr.calls)
	}
	if out.Len() != 0 || !strings.Contains(errOut.String(), "user failed") {
		t.Fatalf("stdout=%q stderr=%q", out.String(), errOut.String())
	}

	recs, _ := p.History(1)
	if len(recs) != 1 || recs[0].Outcome != OutcomeConfiguration {
		t.Fatalf("unexpected journal %#v", recs)
	}
}
