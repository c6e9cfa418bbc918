package config

import (
	"fmt"

	"github.com/cognicore/clarifier/pkg/clarifier/pattern"
	"github.com/cognicore/clarifier/pkg/clarifier/stoplist"
)

// Loader loads the data files a ranking run depends on.
type Loader struct {
	StoplistPath  string
	TemplatesPath string
}

// Components holds the loaded data files.
type Components struct {
	Stoplist  *stoplist.Manager
	Templates []pattern.Template
}

// Load reads every configured file. An empty stoplist path yields an
// empty stoplist; an empty templates path yields pattern.DefaultTemplates.
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.StoplistPath != "" {
		sl, err := stoplist.LoadFile(l.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		comp.Stoplist = sl
	} else {
		comp.Stoplist = stoplist.NewManager(nil)
	}

	if l.TemplatesPath != "" {
		tpls, err := pattern.LoadFile(l.TemplatesPath)
		if err != nil {
			return nil, fmt.Errorf("load templates: %w", err)
		}
		comp.Templates = tpls
	} else {
		tpls, err := pattern.ParseAll(pattern.DefaultTemplates)
		if err != nil {
			return nil, fmt.Errorf("default templates: %w", err)
		}
		comp.Templates = tpls
	}

	return comp, nil
}

// NewLoader returns a Loader for the files named in s.
func NewLoader(s *Settings) *Loader {
	return &Loader{
		StoplistPath:  s.Paths.Stoplist,
		TemplatesPath: s.Paths.Templates,
	}
}
