package web

import "html/template"

var (
	listTemplate  = template.Must(template.New("list").Parse(listHTML))
	newTemplate   = template.Must(template.New("new").Parse(newHTML))
	entryTemplate = template.Must(template.New("entry").Parse(entryHTML))
)

const pageStyle = `
  body { font-family: sans-serif; max-width: 800px; margin: 2rem auto; padding: 0 1rem; }
  textarea { width: 100%; min-height: 18rem; font-family: monospace; }
  .info { color: #2a7; }
  .error { color: #c33; }
  nav a { margin-right: 1rem; }
`

const listHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>kitchenlog</title><style>` + pageStyle + `</style></head>
<body>
<nav><a href="/">Entries</a><a href="/new">New entry</a></nav>
{{if .Info}}<p class="info">{{.Info}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{range .Years}}
<h2>{{.Year}}</h2>
<ul>
{{range .Entries}}  <li><a href="/entry/{{.Ordinal}}">{{.Summary}}</a></li>
{{end}}</ul>
{{end}}
</body>
</html>
`

const newHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>New entry</title><style>` + pageStyle + `</style></head>
<body>
<nav><a href="/">Entries</a><a href="/new">New entry</a></nav>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/new">
<textarea name="text">{{.Text}}</textarea>
<p><button type="submit">Create</button></p>
</form>
</body>
</html>
`

const entryHTML = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Summary}}</title><style>` + pageStyle + `</style></head>
<body>
<nav><a href="/">Entries</a><a href="/new">New entry</a></nav>
{{if .Info}}<p class="info">{{.Info}}</p>{{end}}
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<h1>{{.Summary}}</h1>
<article>{{.Body}}</article>
<form method="post" action="/entry/{{.Ordinal}}" enctype="multipart/form-data">
<textarea name="text">{{.Text}}</textarea>
{{if .Media}}
<ul>
{{range $i, $m := .Media}}  <li>
    <a href="/media/{{$.Ordinal}}/{{$m.Filename}}">{{$m.Filename}}</a>
    <label><input type="checkbox" name="remove_{{$i}}" value="1"> remove</label>
  </li>
{{end}}</ul>
{{end}}
<p><input type="file" name="media"></p>
<p>
  <button type="submit">Save</button>
  <button type="submit" name="remove" value="1">Delete entry</button>
</p>
</form>
</body>
</html>
`
