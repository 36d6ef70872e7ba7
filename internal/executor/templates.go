package executor

import (
	"path"
	"strings"
	"text/template"

	"github.com/kazz187/agentfeed/internal/task"
)

type templateData struct {
	Name      string
	Stem      string
	Package   string
	Task      string
	Signature string
}

var templates = template.Must(template.New("generic").Parse(
	`# File created by {{.Signature}} autonomous worker
# {{.Task}}
`))

func init() {
	template.Must(templates.New(".go").Parse(`// Package {{.Package}} was created by {{.Signature}} autonomous worker.
//
// Task: {{.Task}}
package {{.Package}}
{{if eq .Package "main"}}
func main() {
}
{{end}}`))

	template.Must(templates.New(".py").Parse(`#!/usr/bin/env python3
"""
{{.Stem}}
Created by {{.Signature}} autonomous worker

Task: {{.Task}}
"""


def main():
    """Main entry point"""
    pass


if __name__ == '__main__':
    main()
`))

	template.Must(templates.New(".sh").Parse(`#!/usr/bin/env bash
# {{.Stem}}
# Created by {{.Signature}} autonomous worker
#
# Task: {{.Task}}
set -euo pipefail
`))

	template.Must(templates.New(".md").Parse(`# {{.Stem}}

Created by {{.Signature}} autonomous worker

## Task Description

{{.Task}}

## Details

*This file was automatically generated.*
`))

	template.Must(templates.New(".txt").Parse(`File: {{.Name}}
Created by {{.Signature}} autonomous worker

Task: {{.Task}}

---
Auto-generated file
`))
}

// renderTemplate picks a template by extension; unknown extensions get the generic comment template.
func renderTemplate(rel string, t *task.Task, signature string) (string, error) {
	ext := strings.ToLower(path.Ext(rel))
	tmpl := templates.Lookup(ext)
	if ext == "" || tmpl == nil {
		tmpl = templates.Lookup("generic")
	}

	desc := t.Description
	if desc == "" {
		desc = "No description"
	}
	data := templateData{
		Name:      rel,
		Stem:      strings.TrimSuffix(path.Base(rel), path.Ext(rel)),
		Package:   goPackageName(rel),
		Task:      strings.Join(strings.Fields(desc), " "),
		Signature: signature,
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func goPackageName(rel string) string {
	dir := path.Dir(rel)
	if dir == "." || path.Base(rel) == "main.go" {
		return "main"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(path.Base(dir)) {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || name[0] >= '0' && name[0] <= '9' {
		return "main"
	}
	return name
}

// editMarker is the first line an edit adds, commented for the file's language.
func editMarker(rel, signature string) string {
	text := "Modified by " + signature + " autonomous worker"
	switch strings.ToLower(path.Ext(rel)) {
	case ".go", ".js", ".ts", ".java", ".c", ".h", ".cpp", ".rs", ".swift", ".kt":
		return "// " + text + "\n"
	case ".md", ".html", ".xml":
		return "<!-- " + text + " -->\n"
	case ".sql", ".lua":
		return "-- " + text + "\n"
	default:
		return "# " + text + "\n"
	}
}
