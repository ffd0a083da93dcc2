package utils

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/CloudyKit/jet"
)

// ReportField summarises one written attribute.
type ReportField struct {
	Name   string
	Band   int
	Valid  int
	NoData int
}

// ReportData feeds the run report template.
type ReportData struct {
	Image     string
	Points    string
	Mode      string
	Radius    int
	NumPoints int
	Fields    []*ReportField
	Duration  string
}

// RenderReport writes the run summary through the jet template at
// templatePath.
func RenderReport(templatePath string, data *ReportData, w io.Writer) error {
	view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
		w.Write(b)
	}), filepath.Dir(templatePath), "/")

	template, err := view.GetTemplate(filepath.Base(templatePath))
	if err != nil {
		return fmt.Errorf("%w: report template %s: %v", ErrIO, templatePath, err)
	}

	vars := make(jet.VarMap)
	if err = template.Execute(w, vars, data); err != nil {
		return fmt.Errorf("report template %s: %v", templatePath, err)
	}
	return nil
}
