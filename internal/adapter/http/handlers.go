package http

import (
	"net/http"

	"github.com/Strob0t/scenariogen/internal/adapter/scenariofile"
	"github.com/Strob0t/scenariogen/internal/service"
)

// Handlers holds the services used by the HTTP handlers.
type Handlers struct {
	Compiler *service.CompilerService
}

// compileResponse carries the rendered artifacts. Env is empty when the
// scenario references no placeholders.
type compileResponse struct {
	CompileID string   `json:"compile_id"`
	Compose   string   `json:"compose"`
	Scenario  string   `json:"scenario"`
	Env       string   `json:"env"`
	Secrets   []string `json:"secrets"`
}

// Compile handles POST /api/v1/compile. The body is the scenario TOML document.
func (h *Handlers) Compile(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	sc, err := scenariofile.Parse(body)
	if err != nil {
		writeCompileError(w, err)
		return
	}

	c, err := h.Compiler.Compile(r.Context(), sc)
	if err != nil {
		writeCompileError(w, err)
		return
	}

	resp := compileResponse{
		CompileID: c.ID,
		Compose:   string(c.Artifacts.Compose),
		Scenario:  string(c.Artifacts.Scenario),
		Env:       string(c.Artifacts.Env),
		Secrets:   c.Secrets,
	}
	if resp.Secrets == nil {
		resp.Secrets = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
