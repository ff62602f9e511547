package manager

import (
	"gora/domain/core"
	"gora/domain/model"
	"gora/internal/metrics"
)

// MakeAllChildRelations returns the immediate children of rel, one per removed
// variable, in the order of the removed variable. Relations with fewer than two
// variables have no children. With makeProject each child carries the projection of
// the parent's table (or of the data, when the parent has none).
func (m *Manager) MakeAllChildRelations(rel *model.Relation, makeProject bool) []*model.Relation {
	if rel == nil || rel.Len() < 2 {
		return nil
	}
	children := make([]*model.Relation, 0, rel.Len())
	for _, v := range rel.Indices() {
		indices := rel.Without(v)
		child := m.MakeRelation(indices, false)
		if makeProject && child.Table() == nil {
			if parent := rel.Table(); parent != nil {
				child.AttachTable(parent.Project(indices))
			} else {
				child.AttachTable(m.data.Project(indices))
			}
		}
		children = append(children, child)
	}
	metrics.ChildRelations.Add(float64(len(children)))
	return children
}

// MakeChildModel removes relation removeIndex from mdl and adds that relation's
// children. Children already contained in a remaining relation are dropped by
// model.Canonicalize, which cacheModel applies through model.CanonicalKey and
// model.New. The result comes from the model cache when an equal model exists;
// fromCache reports that.
func (m *Manager) MakeChildModel(mdl *model.Model, removeIndex int, makeProject bool) (*model.Model, bool, error) {
	if removeIndex < 0 || removeIndex >= mdl.Len() {
		return nil, false, core.NewIndexError(removeIndex, mdl.Len())
	}
	removed := mdl.Relation(removeIndex)
	relations := make([]*model.Relation, 0, mdl.Len()+removed.Len())
	for i, r := range mdl.Relations() {
		if i != removeIndex {
			relations = append(relations, r)
		}
	}
	relations = append(relations, m.MakeAllChildRelations(removed, makeProject)...)

	child, fromCache := m.cacheModel(relations)
	metrics.ChildModels.WithLabelValues(metrics.CacheResult(fromCache)).Inc()
	if fromCache {
		m.logger.Trace("child of %s removing %s served from cache: %s", mdl, removed.Name(), child)
	} else {
		m.logger.Debug("child of %s removing %s: %s", mdl, removed.Name(), child)
	}
	return child, fromCache, nil
}

// MakeChildModels returns every distinct child of mdl, one per relation removal, in
// relation order. Duplicates produced by different removals are returned once, and
// children that lose a variable altogether are skipped. In directed systems the IV
// relation is never removed.
func (m *Manager) MakeChildModels(mdl *model.Model, makeProject bool) ([]*model.Model, error) {
	seen := make(map[string]bool, mdl.Len())
	var out []*model.Model
	for i := 0; i < mdl.Len(); i++ {
		if m.IsDirected() && mdl.Relation(i).IsIVRelation() {
			continue
		}
		child, _, err := m.MakeChildModel(mdl, i, makeProject)
		if err != nil {
			return nil, err
		}
		if !coversAll(child, m.vars.Len()) || seen[child.Key()] {
			continue
		}
		seen[child.Key()] = true
		out = append(out, child)
	}
	return out, nil
}

func coversAll(mdl *model.Model, n int) bool {
	covered := make([]bool, n)
	count := 0
	for _, r := range mdl.Relations() {
		for _, i := range r.Indices() {
			if !covered[i] {
				covered[i] = true
				count++
			}
		}
	}
	return count == n
}
