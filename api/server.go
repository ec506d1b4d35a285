/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a separate front-end

ROUTE GROUPS:
  /api/healthz          Liveness
  /api/boards/*         Board listing
  /api/demos/*          Demo definitions and rendering
  /api/dataset/*        Dataset summary, options, reload, import
  /api/imports          Import history
  /                     Built-in ECharts viewer

SECURITY NOTE:
  No authentication middleware. Reload and import are unauthenticated and
  meant for trusted networks.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/serve.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", h.Health)

		r.Route("/boards", func(r chi.Router) {
			r.Get("/", h.ListBoards)
			r.Get("/{board}", h.GetBoard)
		})

		r.Route("/demos", func(r chi.Router) {
			r.Get("/{demo}", h.GetDemo)
			r.Get("/{demo}/render", h.RenderDemo)
		})

		r.Route("/dataset", func(r chi.Router) {
			r.Get("/", h.GetDataset)
			r.Get("/options/{column}", h.GetOptions)
			r.Post("/reload", h.ReloadDataset)
			r.Post("/import", h.ImportDataset)
		})

		r.Get("/imports", h.ListImports)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(indexHTML))
	})

	return r
}

// indexHTML is a minimal viewer: a board/demo sidebar, widgets built from
// the resolved params, and an ECharts canvas. Strings wrapped in the code
// marker are turned back into functions before setOption.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Retail Dashboards</title>
<script src="https://cdn.jsdelivr.net/npm/echarts@5/dist/echarts.min.js"></script>
<style>
body { font-family: system-ui; margin: 0; display: flex; }
nav { width: 260px; padding: 16px; background: #f5f5f7; min-height: 100vh; }
main { flex: 1; padding: 16px; }
#chart { width: 100%; }
.metric { display: inline-block; margin-right: 32px; }
.metric b { display: block; font-size: 24px; }
.warn { color: #a15c00; }
</style>
</head>
<body>
<nav>
<h3>Configuration</h3>
<label>Choose an example <select id="demo"></select></label>
<div id="params"></div>
</nav>
<main>
<h1 id="title">Retail Dashboards</h1>
<div id="chart"></div>
<div id="metrics"></div>
<div id="warning" class="warn"></div>
<pre id="table"></pre>
</main>
<script>
const MARK = "__f__";
function revive(v) {
  if (typeof v === "string" && v.startsWith(MARK) && v.endsWith(MARK)) {
    return new Function("return (" + v.slice(MARK.length, -MARK.length) + ")")();
  }
  if (Array.isArray(v)) return v.map(revive);
  if (v && typeof v === "object") { for (const k in v) v[k] = revive(v[k]); }
  return v;
}
const chart = echarts.init(document.getElementById("chart"));
const demoSel = document.getElementById("demo");
async function render(query) {
  const res = await fetch("/api/demos/" + demoSel.value + "/render?" + (query || ""));
  const page = await res.json();
  if (!res.ok) { document.getElementById("warning").textContent = page.error + ": " + (page.details || ""); return; }
  document.getElementById("title").textContent = page.title;
  document.getElementById("chart").style.height = page.height;
  chart.resize(); chart.clear();
  if (page.chart) chart.setOption(revive(page.chart));
  document.getElementById("metrics").innerHTML = (page.metrics || []).map(m => '<span class="metric">' + m.label + '<b>' + m.value + '</b></span>').join("");
  document.getElementById("warning").textContent = page.warning || "";
  document.getElementById("table").textContent = page.table ? [page.table.columns].concat(page.table.rows).map(r => r.join("\t")).join("\n") : "";
  const box = document.getElementById("params"); box.innerHTML = "";
  for (const p of page.params || []) {
    let el;
    if (p.kind === "select" || p.kind === "radio") {
      el = document.createElement("select");
      for (const o of p.options || []) { const opt = new Option(o, o); opt.selected = o === p.value; el.add(opt); }
    } else {
      el = document.createElement("input");
      el.type = p.kind === "date" ? "date" : "number";
      if (p.kind === "slider") { el.min = p.min; el.max = p.max; el.step = p.step; }
      el.value = p.value;
    }
    el.name = p.name;
    el.onchange = () => render(new URLSearchParams([...box.querySelectorAll("[name]")].map(e => [e.name, e.value])).toString());
    const label = document.createElement("label"); label.textContent = p.label + " "; label.appendChild(el);
    box.appendChild(label); box.appendChild(document.createElement("br"));
  }
}
fetch("/api/boards").then(r => r.json()).then(boards => {
  for (const b of boards) {
    const group = document.createElement("optgroup"); group.label = b.name;
    for (const d of b.demos) group.appendChild(new Option(d.name, d.id));
    demoSel.appendChild(group);
  }
  demoSel.onchange = () => render("");
  render("");
});
</script>
</body>
</html>`
