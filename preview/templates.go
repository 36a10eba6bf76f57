package preview

import "html/template"

const layout = `{{define "head"}}<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 52rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
a { color: #0b62c4; }
.description { color: #555; }
.param { border-top: 1px solid #ddd; padding: .6rem 0; }
.param-head code { font-weight: 600; }
.type { color: #777; font-size: .9em; }
.example pre { background: #f5f5f5; padding: .8rem; overflow-x: auto; }
</style>
</head>
<body>
{{end}}{{define "foot"}}<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.onmessage = function (e) { if (e.data === "reload") location.reload(); };
})();
</script>
</body>
</html>
{{end}}`

var indexTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).New("index").Parse(
	`{{template "head" .}}<h1>{{.Title}}</h1>
{{range .Sections}}<h2>{{.Group}}</h2>
<ul>
{{range .Entries}}<li><a href="{{.URL}}">{{.Title}}</a>{{if .Description}} <span class="description">{{.Description}}</span>{{end}}</li>
{{else}}<li class="description">No pages</li>
{{end}}</ul>
{{end}}{{template "foot" .}}`))

var pageTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).New("page").Parse(
	`{{template "head" .}}<p><a href="/">Library Reference</a></p>
<h1>{{.Title}}</h1>
{{if .Description}}<p class="description">{{.Description}}</p>
{{end}}{{.Body}}
{{template "foot" .}}`))
