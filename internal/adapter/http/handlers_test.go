package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/scenariogen/internal/adapter/compose"
	apihttp "github.com/Strob0t/scenariogen/internal/adapter/http"
	"github.com/Strob0t/scenariogen/internal/middleware"
	"github.com/Strob0t/scenariogen/internal/port/catalog"
	"github.com/Strob0t/scenariogen/internal/secrets"
	"github.com/Strob0t/scenariogen/internal/service"
)

func newTestRouter(t *testing.T, mw ...func(http.Handler) http.Handler) chi.Router {
	t.Helper()

	lookup := catalog.LookupFunc(func(_ context.Context, id string) (catalog.Agent, error) {
		switch id {
		case "green-1":
			return catalog.Agent{ID: id, DockerImage: "ghcr.io/x/green:v1"}, nil
		case "down":
			return catalog.Agent{}, catalog.ErrTransport
		default:
			return catalog.Agent{}, catalog.ErrNotFound
		}
	})
	compiler := service.NewCompilerService(service.NewImageResolver(lookup, false), compose.DefaultOptions(), 2)
	compiler.SetSecretsLoader(func(...string) secrets.Loader {
		return func() (map[string]string, error) { return nil, nil }
	})

	r := chi.NewRouter()
	apihttp.MountRoutes(r, &apihttp.Handlers{Compiler: compiler}, mw...)
	return r
}

func post(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compile", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/toml")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const validScenario = `
[green_agent]
agentbeats_id = "green-1"

[[participants]]
name = "agent"
image = "agent:local"
env = { TOKEN = "${API_TOKEN}" }

[config]
domain = "airline"
`

func TestCompileEndpoint(t *testing.T) {
	rec := post(newTestRouter(t), validScenario)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		CompileID string   `json:"compile_id"`
		Compose   string   `json:"compose"`
		Scenario  string   `json:"scenario"`
		Env       string   `json:"env"`
		Secrets   []string `json:"secrets"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.CompileID == "" {
		t.Error("expected compile id")
	}
	if !strings.HasPrefix(resp.Compose, "# Auto-generated from scenario.toml") {
		t.Errorf("unexpected compose header: %.40q", resp.Compose)
	}
	if !strings.Contains(resp.Scenario, `endpoint = 'http://agent:9009'`) {
		t.Errorf("unexpected routing manifest: %s", resp.Scenario)
	}
	if resp.Env != "API_TOKEN=\n" {
		t.Errorf("unexpected env manifest %q", resp.Env)
	}
	if len(resp.Secrets) != 1 || resp.Secrets[0] != "API_TOKEN" {
		t.Errorf("unexpected secrets %v", resp.Secrets)
	}
}

func TestCompileEndpointErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"empty body", "", http.StatusBadRequest, "scenario body is required"},
		{"malformed toml", "[green_agent", http.StatusBadRequest, "scenario syntax error"},
		{"both identities", "[green_agent]\nimage = \"a\"\nagentbeats_id = \"b\"\n", http.StatusUnprocessableEntity, "green_agent has both"},
		{
			"duplicates",
			"[green_agent]\nimage = \"a\"\n[[participants]]\nname = \"judge\"\nimage = \"j\"\n[[participants]]\nname = \"judge\"\nimage = \"j\"\n",
			http.StatusUnprocessableEntity, "judge",
		},
		{"not found", "[green_agent]\nagentbeats_id = \"nope\"\n", http.StatusBadGateway, "green_agent"},
		{"transport", "[green_agent]\nagentbeats_id = \"down\"\n", http.StatusBadGateway, "transport"},
	}

	r := newTestRouter(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(r, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !strings.Contains(resp.Error, tt.want) {
				t.Fatalf("expected %q in %q", tt.want, resp.Error)
			}
		})
	}
}

func TestCompileEndpointTooLarge(t *testing.T) {
	rec := post(newTestRouter(t), strings.Repeat("#", 2<<20))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
}

func TestCompileEndpointRateLimited(t *testing.T) {
	r := newTestRouter(t, middleware.NewRateLimiter(0.001, 1).Handler)

	if rec := post(r, validScenario); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := post(r, validScenario); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	r := newTestRouter(t)

	for _, path := range []string{"/health", "/api/v1/"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}
