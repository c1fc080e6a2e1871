package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dhvanibank/dhvani/internal/assistant"
	"github.com/dhvanibank/dhvani/internal/bank"
	"github.com/dhvanibank/dhvani/internal/intent"
	"github.com/dhvanibank/dhvani/internal/server"
	"github.com/dhvanibank/dhvani/pkg/platform"
	"github.com/dhvanibank/dhvani/pkg/platform/mock"
)

func newTestServer(t *testing.T, plat platform.Platform) *httptest.Server {
	t.Helper()
	if plat == nil {
		plat = &mock.Platform{
			Rec:   &mock.Recognizer{},
			Synth: mock.NewSynthesizer(platform.Voice{Name: "English", Lang: "en-US"}),
		}
	}
	engine := assistant.New(
		assistant.Config{SpeakDelay: -1},
		assistant.Deps{Platform: plat},
	)
	srv := server.New(server.Config{}, server.Deps{
		Engine: engine,
		Bridge: http.NotFoundHandler(),
		Store:  bank.NewMemoryStore(),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string, out any) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	var status assistant.Status
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/status", "", &status)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if status.State != "idle" || status.Locale != intent.LocaleEnglish {
		t.Errorf("unexpected status: %+v", status)
	}
}

func TestVoicesEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	var voices []platform.Voice
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/voices", "", &voices)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(voices) != 1 || voices[0].Lang != "en-US" {
		t.Errorf("voices = %+v", voices)
	}
}

func TestAccountsEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	var accounts []bank.Account
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/accounts", "", &accounts)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}

	var acc bank.Account
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/"+accounts[0].ID, "", &acc)
	if resp.StatusCode != http.StatusOK || acc.ID != accounts[0].ID {
		t.Errorf("account lookup: status %d, got %+v", resp.StatusCode, acc)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/nope", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing account status = %d, want 404", resp.StatusCode)
	}
}

func TestTransactionsEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	var txns []bank.Transaction
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/accounts/acc-savings/transactions?limit=2", "", &txns)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(txns) != 2 {
		t.Errorf("got %d transactions, want 2", len(txns))
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/accounts/acc-savings/transactions?limit=-1", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("negative limit status = %d, want 400", resp.StatusCode)
	}
}

func TestTransferEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	var txn bank.Transaction
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transfers",
		`{"from_account_id":"acc-savings","recipient_name":"Ravi","amount_paise":250000}`, &txn)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	if txn.Direction != bank.DirectionDebit || txn.Amount != 250000 {
		t.Errorf("unexpected transaction: %+v", txn)
	}
}

func TestTransferEndpoint_Failures(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"zero amount", `{"from_account_id":"acc-savings","amount_paise":0}`, http.StatusBadRequest},
		{"overdraw", `{"from_account_id":"acc-savings","amount_paise":999999999999}`, http.StatusUnprocessableEntity},
		{"missing account", `{"from_account_id":"nope","amount_paise":100}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/transfers", tc.body, nil)
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestLocaleEndpoint(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/locale", `{"locale":"kn"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var status assistant.Status
	doJSON(t, http.MethodGet, ts.URL+"/api/status", "", &status)
	if status.Locale != intent.LocaleKannada {
		t.Errorf("locale = %q, want kn", status.Locale)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/locale", `{"locale":"fr"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown locale status = %d, want 400", resp.StatusCode)
	}
}

func TestListenEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/listen", "", nil)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("listen status = %d, want 202", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/stop", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("stop status = %d, want 200", resp.StatusCode)
	}
}

func TestListen_NoRecognizer(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, &mock.Platform{})

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/listen", "", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	ts := newTestServer(t, nil)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp := doJSON(t, http.MethodGet, ts.URL+path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, resp.StatusCode)
		}
	}
}
