package manager

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gora/domain/model"
)

// RenderHTML converts a markdown report to HTML. Raw HTML in the source is dropped.
func RenderHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return markdown.ToHTML(md, p, renderer)
}

func formatStat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.6f", v), "0"), ".")
}

func (m *Manager) emit(w io.Writer, md *bytes.Buffer) error {
	out := md.Bytes()
	if m.cfg.HTML {
		out = RenderHTML(out)
	}
	_, err := w.Write(out)
	return err
}

// FitReportMarkdown renders the relations and every statistic the model carries.
func (m *Manager) FitReportMarkdown(mdl *model.Model) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "### Model %s\n\n", m.ModelName(mdl))
	if m.ref != nil {
		fmt.Fprintf(&b, "Reference model: %s\n\n", m.ModelName(m.ref))
	}

	b.WriteString("| Relation | Variables |\n|---|---|\n")
	for _, r := range mdl.Relations() {
		name := r.Name()
		if m.cfg.InverseNotation {
			name = r.InverseName()
		}
		if r.IsIVRelation() {
			name = "IV"
		}
		names := make([]string, 0, r.Len())
		for _, i := range r.Indices() {
			names = append(names, m.vars.At(i).Name)
		}
		fmt.Fprintf(&b, "| %s | %s |\n", name, strings.Join(names, ", "))
	}

	b.WriteString("\n| Statistic | Value |\n|---|---|\n")
	for _, name := range model.AttributeNames {
		if v, ok := mdl.Attribute(name); ok {
			fmt.Fprintf(&b, "| %s | %s |\n", name, formatStat(v))
		}
	}
	b.WriteString("\n")
	return b.Bytes()
}

// PrintFitReport writes the model's fit report, as HTML when HTML output is on.
func (m *Manager) PrintFitReport(mdl *model.Model, w io.Writer) error {
	return m.emit(w, bytes.NewBuffer(m.FitReportMarkdown(mdl)))
}

// BasicStatisticsMarkdown renders the variables and the summary of the data.
func (m *Manager) BasicStatisticsMarkdown() []byte {
	var b bytes.Buffer
	b.WriteString("### Basic statistics\n\n| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Variables | %d |\n", m.vars.Len())
	fmt.Fprintf(&b, "| System | %s |\n", m.mode)
	fmt.Fprintf(&b, "| State space size | %s |\n", formatStat(m.vars.StateSpaceSize(nil)))
	fmt.Fprintf(&b, "| Sample size | %s |\n", formatStat(m.sampleSize))
	fmt.Fprintf(&b, "| H(data) | %s |\n", formatStat(m.dataEntropy(m.vars.AllIndices())))
	fmt.Fprintf(&b, "| DF(top) | %s |\n", formatStat(m.effectDF(m.vars.AllIndices())))
	if m.IsDirected() {
		fmt.Fprintf(&b, "| H(IV) | %s |\n", formatStat(m.dataEntropy(m.vars.IVIndices())))
		fmt.Fprintf(&b, "| H(DV) | %s |\n", formatStat(m.dataEntropy(m.vars.DVIndices())))
	}

	b.WriteString("\n| Variable | Abbrev | Cardinality | Role | States |\n|---|---|---|---|---|\n")
	for i := 0; i < m.vars.Len(); i++ {
		v := m.vars.At(i)
		fmt.Fprintf(&b, "| %s | %s | %d | %s | %s |\n", v.Name, v.Abbrev, v.Cardinality, v.Role, strings.Join(v.States, " "))
	}
	b.WriteString("\n")
	return b.Bytes()
}

// PrintBasicStatistics writes the basic statistics of the data.
func (m *Manager) PrintBasicStatistics(w io.Writer) error {
	return m.emit(w, bytes.NewBuffer(m.BasicStatisticsMarkdown()))
}
