package app

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"gora/domain/core"
	"gora/domain/model"
	"gora/internal"
	"gora/internal/errors"
	"gora/internal/manager"
	"gora/internal/options"
	"gora/ports"
)

// SearchService runs the level-wise downward search of the lattice.
type SearchService struct {
	analysis
}

// NewSearchService creates a search service. repo may be nil to skip persistence.
func NewSearchService(settings Settings, repo ports.RunRepository, logger *internal.Logger) *SearchService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SearchService{analysis{settings: settings, repo: repo, logger: logger.Named("search")}}
}

// Search starts at the start model (the top reference unless "start-model" names
// another) and walks down "search-levels" levels. At each level the children of the
// kept models are generated, their statistics computed and the filter applied; the
// best "search-width" by the sort attribute seed the next level. Every model that
// passes the filter is reported, best first.
func (s *SearchService) Search(ctx context.Context, req Request) (*Result, error) {
	res, err := s.search(ctx, req)
	if err != nil {
		return nil, s.fail(core.RunSearch, err)
	}
	return res, nil
}

func (s *SearchService) search(ctx context.Context, req Request) (*Result, error) {
	m, err := s.newManager(req)
	if err != nil {
		return nil, err
	}
	opts := req.Options
	if opts == nil {
		opts = options.NewStandard()
	}
	width, levels := s.settings.SearchWidth, s.settings.SearchLevels
	if v, ok := opts.GetInt(options.OptSearchWidth); ok {
		width = v
	}
	if v, ok := opts.GetInt(options.OptSearchLevels); ok {
		levels = v
	}
	if width < 1 || levels < 0 {
		return nil, errors.InvalidInput(fmt.Sprintf("search width %d and levels %d must be positive", width, levels), nil)
	}

	start := m.TopRefModel()
	if name, ok := opts.GetString(options.OptStartModel); ok && name != "" {
		switch name {
		case "top":
		case "bottom":
			start = m.BottomRefModel()
		default:
			if start, err = m.MakeModel(name, true); err != nil {
				return nil, errors.InvalidInput("bad start model", err)
			}
		}
	}
	s.logger.Info("searching down from %s: width %d, levels %d, sort by %s %s",
		m.ModelName(start), width, levels, m.SortAttr(), m.SortDirection())

	nextID := 1
	evaluate := func(mdl *model.Model, level int, progenitor *model.Model) (bool, error) {
		mdl.ID, mdl.Level, mdl.Progenitor = nextID, level, progenitor
		nextID++
		if err := computeStatistics(m, mdl, opts); err != nil {
			return false, errors.AnalysisFailed(m.ModelName(mdl), err)
		}
		if _, err := m.Attribute(mdl, m.SortAttr()); err != nil {
			return false, errors.AnalysisFailed(m.ModelName(mdl), err)
		}
		keep, err := m.ApplyFilter(mdl)
		if err != nil {
			return false, errors.AnalysisFailed(m.ModelName(mdl), err)
		}
		mdl.DeleteFitTable()
		return keep, nil
	}

	seen := map[string]bool{start.Key(): true}
	var reported []*model.Model
	keep, err := evaluate(start, 0, nil)
	if err != nil {
		return nil, err
	}
	if keep {
		reported = append(reported, start)
	}

	current := []*model.Model{start}
	for level := 1; level <= levels && len(current) > 0; level++ {
		var candidates []*model.Model
		for _, parent := range current {
			if err := checkContext(ctx); err != nil {
				return nil, err
			}
			children, err := m.MakeChildModels(parent, true)
			if err != nil {
				return nil, errors.AnalysisFailed(m.ModelName(parent), err)
			}
			for _, child := range children {
				if seen[child.Key()] {
					continue
				}
				seen[child.Key()] = true
				keep, err := evaluate(child, level, parent)
				if err != nil {
					return nil, err
				}
				// rejected models stay in the frontier so their children are still searched
				candidates = append(candidates, child)
				if keep {
					reported = append(reported, child)
				}
			}
		}
		rankModels(m, candidates)
		if len(candidates) > width {
			candidates = candidates[:width]
		}
		current = candidates
		s.logger.Debug("level %d: %d models kept", level, len(current))
		if req.Progress != nil {
			p := Progress{Level: level, Levels: levels, Searched: nextID - 1, Kept: len(current)}
			if len(current) > 0 {
				p.Best = m.ModelName(current[0])
			}
			req.Progress(p)
		}
	}

	rankModels(m, reported)
	var report bytes.Buffer
	report.Write(m.BasicStatisticsMarkdown())
	writeSearchTable(&report, m, reported)
	return s.finish(ctx, core.RunSearch, req, m, reported, &report)
}

// rankModels orders models by the sort attribute in the manager's sort direction,
// keeping generation order among ties.
func rankModels(m *manager.Manager, mdls []*model.Model) {
	attr, dir := m.SortAttr(), m.SortDirection()
	value := func(mdl *model.Model) float64 {
		v, _ := mdl.Attribute(attr)
		return v
	}
	sort.SliceStable(mdls, func(i, j int) bool {
		if dir == manager.SortAscending {
			return value(mdls[i]) < value(mdls[j])
		}
		return value(mdls[i]) > value(mdls[j])
	})
}

func searchColumns(m *manager.Manager) []string {
	cols := []string{model.AttrH, model.AttrDF, model.AttrDDF, model.AttrLR, model.AttrAlpha,
		model.AttrInformation, model.AttrAIC, model.AttrBIC}
	if m.IsDirected() {
		cols = append(cols, model.AttrCondPctDH)
	}
	sortAttr := m.SortAttr()
	for _, c := range cols {
		if c == sortAttr {
			return cols
		}
	}
	return append(cols, sortAttr)
}

func writeSearchTable(b *bytes.Buffer, m *manager.Manager, mdls []*model.Model) {
	cols := searchColumns(m)
	fmt.Fprintf(b, "### Search results (sorted by %s, %s)\n\n", m.SortAttr(), m.SortDirection())
	if f, ok := m.Filter(); ok {
		fmt.Fprintf(b, "Filter: %s\n\n", f)
	}
	b.WriteString("| ID | Level | Model |")
	for _, c := range cols {
		fmt.Fprintf(b, " %s |", c)
	}
	b.WriteString("\n|---|---|---|")
	for range cols {
		b.WriteString("---|")
	}
	b.WriteString("\n")
	for _, mdl := range mdls {
		fmt.Fprintf(b, "| %d | %d | %s |", mdl.ID, mdl.Level, m.ModelName(mdl))
		for _, c := range cols {
			if v, ok := mdl.Attribute(c); ok {
				fmt.Fprintf(b, " %.6g |", v)
			} else {
				b.WriteString(" |")
			}
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}
