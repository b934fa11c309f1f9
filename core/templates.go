package core

import (
	"bytes"
	htmltmpl "html/template"
	"io/fs"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/CovEducation/Website-sub000/fs"
)

const baseTemplate = "base"

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: {tmplCacheEntry}}

	// templateSet lazily parses every template of an embedded directory along with its _base layout.
	templateSet struct {
		dir   string
		fsys  fs.FS
		once  sync.Once
		cache tmplCache
		err   error
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}
)

var (
	emailTemplates = newTemplateSet(appfs.FS, "templates/email")
	smsTemplates   = newTemplateSet(appfs.FS, "templates/sms")
)

func newTemplateSet(fsys fs.FS, dir string) *templateSet {
	return &templateSet{dir: dir, fsys: fsys}
}

// ParseTemplates parses all embedded notification templates up front so broken templates fail at start-up.
func ParseTemplates() error {
	if err := emailTemplates.load(); err != nil {
		return err
	}
	return smsTemplates.load()
}

func (ts *templateSet) load() error {
	ts.once.Do(func() {
		ts.cache = make(tmplCache)

		fps, err := fs.Glob(ts.fsys, path.Join(ts.dir, "*"))
		if err != nil {
			ts.err = errors.Wrap(err, "listing templates")
			return
		}
		for _, fp := range fps {
			fname := path.Base(fp)
			ext := path.Ext(fname)
			if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
				continue
			}
			name := strings.TrimSuffix(fname, ext)
			entry, ok := ts.cache[name]
			if !ok {
				entry = make(tmplCacheEntry)
				ts.cache[name] = entry
			}

			if ext == ".txt" {
				tmpl, err := texttmpl.ParseFS(ts.fsys, path.Join(ts.dir, "_base.txt"), fp)
				if err != nil {
					ts.err = errors.Wrapf(err, "parsing %s", fp)
					return
				}
				entry[ext] = tmpl.Option("missingkey=error")
			} else {
				tmpl, err := htmltmpl.ParseFS(ts.fsys, path.Join(ts.dir, "_base.gohtml"), fp)
				if err != nil {
					ts.err = errors.Wrapf(err, "parsing %s", fp)
					return
				}
				entry[ext] = tmpl.Option("missingkey=error")
			}
		}
	})
	return ts.err
}

func (ts *templateSet) has(name string) bool {
	if err := ts.load(); err != nil {
		return false
	}
	_, ok := ts.cache[name]
	return ok
}

// render executes the `name` template for the given extension.
// ok is false when no such template exists.
func (ts *templateSet) render(name, ext string, data ContextData) (out string, ok bool, err error) {
	if err = ts.load(); err != nil {
		return "", false, err
	}
	entry, found := ts.cache[name]
	if !found {
		return "", false, nil
	}

	var buff bytes.Buffer
	switch tmpl := entry[ext].(type) {
	case *texttmpl.Template:
		err = tmpl.ExecuteTemplate(&buff, baseTemplate, data)
	case *htmltmpl.Template:
		err = tmpl.ExecuteTemplate(&buff, baseTemplate, data)
	default:
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "rendering %s%s", name, ext)
	}
	return strings.TrimSpace(buff.String()), true, nil
}
