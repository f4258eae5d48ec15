package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"yatube/internal/utils"
	"yatube/web"

	"github.com/gin-contrib/multitemplate"
)

const templatesDir = "templates"

// views are rendered inside layouts/base.html together with every include.
var views = []string{
	"posts/index.html",
	"posts/follow.html",
	"posts/group_list.html",
	"posts/groups.html",
	"posts/profile.html",
	"posts/post_detail.html",
	"posts/create_post.html",
	"auth/login.html",
	"auth/signup.html",
	"error.html",
}

func loadTemplates() (multitemplate.Render, error) {
	r := multitemplate.New()

	includes, err := fs.Glob(web.FS, templatesDir+"/includes/*.html")
	if err != nil {
		return nil, err
	}

	funcs := templateFuncs()
	for _, view := range views {
		files := append([]string{templatesDir + "/layouts/base.html"}, includes...)
		files = append(files, path.Join(templatesDir, "views", view))

		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(web.FS, files...)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", view, err)
		}
		r.Add(view, tmpl)
	}
	return r, nil
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"date": func(t time.Time) string {
			return t.Local().Format("02.01.2006 15:04")
		},
		"isoDate": func(t time.Time) string {
			return t.Format(time.RFC3339)
		},
		"year": func() int {
			return time.Now().Year()
		},
		"markdown": utils.RenderMarkdown,
		"mediaURL": func(key string) string {
			return "/media/" + key
		},
		"linebreaks": func(s string) template.HTML {
			escaped := template.HTMLEscapeString(s)
			escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
			return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
		},
	}
}
