// Package category resolves transaction categories against the hierarchy.
package category

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"github.com/theirongolddev/spendvibe/internal/config"
	"github.com/theirongolddev/spendvibe/internal/model"
)

// Index is an immutable lookup over one category hierarchy snapshot.
// Build it once per analysis and share it read-only.
type Index struct {
	names       map[string]string
	parents     map[string]string
	parentNames map[string]string
	types       map[string]string
	kinds       map[string]model.ParentKind

	targets  map[string]struct{}
	excluded map[string]struct{}
	nonEss   map[string]struct{}

	socialParent string
	fixedParent  string
}

// Build indexes the categories under the given policy.
func Build(cats []model.Category, pol config.Categories) *Index {
	idx := &Index{
		names:        make(map[string]string, len(cats)),
		parents:      make(map[string]string, len(cats)),
		parentNames:  make(map[string]string),
		types:        make(map[string]string, len(cats)),
		kinds:        make(map[string]model.ParentKind, len(pol.Kinds)),
		targets:      toSet(pol.TargetParents),
		excluded:     toSet(pol.ExcludedParents),
		nonEss:       toSet(pol.NonEssential),
		socialParent: pol.SocialParent,
		fixedParent:  pol.FixedParent,
	}

	for _, c := range cats {
		idx.names[c.ID] = c.Name
		idx.types[c.ID] = c.TxnType
		if c.ParentID != "" {
			idx.parents[c.ID] = c.ParentID
		} else {
			idx.parentNames[c.ID] = c.Name
		}
		if _, ok := idx.targets[c.ID]; ok {
			idx.parentNames[c.ID] = c.Name
		}
	}

	for key, name := range pol.Kinds {
		if k, ok := model.ParseParentKind(name); ok {
			idx.kinds[key] = k
		}
	}

	return idx
}

// Name returns the display name of a category id.
func (idx *Index) Name(id string) (string, bool) {
	n, ok := idx.names[id]
	return n, ok && n != ""
}

// ParentID resolves the top-level parent of a category. A target parent id
// is its own parent.
func (idx *Index) ParentID(id string) string {
	if idx.IsTarget(id) {
		return id
	}
	return idx.parents[id]
}

// ParentName returns the display name of a top-level category.
func (idx *Index) ParentName(parentID string) (string, bool) {
	n, ok := idx.parentNames[parentID]
	return n, ok && n != ""
}

// TxnType returns the declared transaction type of a category and whether
// the hierarchy declares one.
func (idx *Index) TxnType(id string) (string, bool) {
	t, ok := idx.types[id]
	return t, ok && t != ""
}

// IsTarget reports whether id is a configured top-level parent.
func (idx *Index) IsTarget(id string) bool {
	_, ok := idx.targets[id]
	return ok
}

// IsExcluded reports whether id is a non-spending parent.
func (idx *Index) IsExcluded(id string) bool {
	_, ok := idx.excluded[id]
	return ok
}

// IsSocial reports whether parentID is the social parent.
func (idx *Index) IsSocial(parentID string) bool {
	return parentID != "" && parentID == idx.socialParent
}

// IsFixedParent reports whether the parent id or name is the fixed parent.
func (idx *Index) IsFixedParent(parentID, parentName string) bool {
	if idx.fixedParent == "" {
		return false
	}
	return parentID == idx.fixedParent || parentName == idx.fixedParent
}

// IsNonEssential reports whether the parent id or name is discretionary.
func (idx *Index) IsNonEssential(parentID, parentName string) bool {
	if _, ok := idx.nonEss[parentID]; ok && parentID != "" {
		return true
	}
	_, ok := idx.nonEss[parentName]
	return ok
}

// Kind classifies a parent by id first, then by name.
func (idx *Index) Kind(parentID, parentName string) model.ParentKind {
	if k, ok := idx.kinds[parentID]; ok && parentID != "" {
		return k
	}
	if k, ok := idx.kinds[parentName]; ok {
		return k
	}
	return model.ParentOther
}

// Fingerprint hashes a hierarchy and its policy so identical inputs map
// to the same cached index regardless of input order.
func Fingerprint(cats []model.Category, pol config.Categories) string {
	rows := make([]string, 0, len(cats))
	for _, c := range cats {
		rows = append(rows, c.ID+"\x1f"+c.ParentID+"\x1f"+c.Name+"\x1f"+c.TxnType)
	}
	sort.Strings(rows)

	h := sha256.New()
	for _, r := range rows {
		h.Write([]byte(r))
		h.Write([]byte{'\n'})
	}
	writeList := func(tag string, vals []string) {
		sorted := append([]string(nil), vals...)
		sort.Strings(sorted)
		h.Write([]byte(tag))
		for _, v := range sorted {
			h.Write([]byte(v))
			h.Write([]byte{0})
		}
	}
	writeList("targets", pol.TargetParents)
	writeList("excluded", pol.ExcludedParents)
	writeList("nonessential", pol.NonEssential)
	kinds := make([]string, 0, len(pol.Kinds))
	for k, v := range pol.Kinds {
		kinds = append(kinds, k+"="+v)
	}
	writeList("kinds", kinds)
	h.Write([]byte("social=" + pol.SocialParent + ";fixed=" + pol.FixedParent))

	return hex.EncodeToString(h.Sum(nil))
}

func toSet(vals []string) map[string]struct{} {
	set := make(map[string]struct{}, len(vals))
	for _, v := range vals {
		set[v] = struct{}{}
	}
	return set
}
