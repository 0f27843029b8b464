// Package templates holds the server-rendered dashboard page. The page is a
// single templ component; all data arrives through the datastar SSE
// endpoints after load.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

func Dashboard() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, dashboardPage)
		return err
	})
}

const dashboardPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Fruit Import/Export Dashboard</title>
<script type="module" src="https://cdn.jsdelivr.net/gh/starfederation/datastar@v1.0.0/bundles/datastar.js"></script>
<style>
body { font-family: system-ui, sans-serif; margin: 0; background: #f6f7f9; color: #2c3e50; }
header { background: #2c3e50; color: #fff; padding: 1rem 2rem; }
header h1 { margin: 0; font-size: 1.4rem; }
main { display: grid; grid-template-columns: 260px 1fr; gap: 1.5rem; padding: 1.5rem 2rem; }
aside { background: #fff; border-radius: 6px; padding: 1rem; align-self: start; }
aside label { display: block; margin-top: 0.75rem; font-weight: 600; font-size: 0.85rem; }
aside input { width: 100%; box-sizing: border-box; padding: 0.35rem; margin-top: 0.25rem; }
aside button, aside a.export { display: block; width: 100%; box-sizing: border-box; margin-top: 1rem;
  padding: 0.5rem; border: 0; border-radius: 4px; background: #7396b9; color: #fff;
  text-align: center; text-decoration: none; cursor: pointer; }
section { background: #fff; border-radius: 6px; padding: 1rem; margin-bottom: 1.5rem; }
.metrics { display: grid; grid-template-columns: repeat(4, 1fr); gap: 0.75rem; }
.metric { background: #f7f7f7; border-radius: 5px; padding: 0.75rem; }
.metric span { display: block; font-size: 0.8rem; color: #7f8c8d; }
.metric strong { font-size: 1.3rem; }
.charts { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; }
.charts img { width: 100%; height: auto; border: 1px solid #e0e3e7; border-radius: 4px; }
.data-table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
.data-table th, .data-table td { padding: 0.4rem 0.5rem; border-bottom: 1px solid #eceff2; text-align: left; }
.table-note { color: #7f8c8d; font-size: 0.8rem; }
.filter-error { color: #c0392b; font-size: 0.85rem; margin-top: 0.75rem; }
</style>
</head>
<body data-signals='{"seasons":"","transports":"","species":"","varieties":"","importers":"","exporters":"","ports":"","etaFrom":"","etaTo":""}'
      data-on-load="@get('/sse/refresh')">
<header><h1>Fruit Import/Export Analysis Dashboard</h1></header>
<main>
<aside>
<h2>Filters</h2>
<label>Season<input type="text" placeholder="e.g. 2023-2024" data-bind="seasons"></label>
<label>Transport<input type="text" placeholder="e.g. LINER,AIR" data-bind="transports"></label>
<label>Specie<input type="text" data-bind="species"></label>
<label>Variety<input type="text" data-bind="varieties"></label>
<label>Importer<input type="text" data-bind="importers"></label>
<label>Exporter<input type="text" data-bind="exporters"></label>
<label>Arrival port<input type="text" data-bind="ports"></label>
<label>ETA from<input type="date" data-bind="etaFrom"></label>
<label>ETA to<input type="date" data-bind="etaTo"></label>
<button data-on-click="@get('/sse/refresh')">Apply filters</button>
<div id="filter-error" class="filter-error"></div>
<a class="export" href="/api/export">Download filtered CSV</a>
<a class="export" href="/api/export?format=xlsx">Download filtered XLSX</a>
</aside>
<div>
<section>
<h2>Overview</h2>
<div id="overview-metrics" class="metrics"><div class="metric"><span>Loading</span><strong>&hellip;</strong></div></div>
</section>
<section>
<h2>Analysis</h2>
<div id="charts-content" class="charts"></div>
</section>
<section>
<h2>Shipments</h2>
<div id="shipments-content"><p class="table-note">loading&hellip;</p></div>
</section>
</div>
</main>
</body>
</html>
`
