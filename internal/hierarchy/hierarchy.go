// Package hierarchy provides tree operations over any entity with a
// self-referential parent link (assets, locations, plans, subtasks).
// Rows form an arena keyed by id; ancestors and descendants are computed
// by repeated lookup, never by following in-memory pointers, so the same
// code serves every entity table.
package hierarchy

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hollowoak/farmhand/internal/apperr"
)

// Node is any entity that participates in a parent/child tree.
type Node interface {
	NodeID() string
	NodeParentID() *string
}

// ParentState classifies a node's link to its parent.
type ParentState int

const (
	// ParentRoot means the node has no parent.
	ParentRoot ParentState = iota
	// ParentAttached means the parent row exists.
	ParentAttached
	// ParentDangling means parent_id points at a deleted row. Reads treat
	// such nodes as root-like; the state is surfaced so callers can tell
	// the difference.
	ParentDangling
)

func (s ParentState) String() string {
	switch s {
	case ParentRoot:
		return "root"
	case ParentAttached:
		return "attached"
	case ParentDangling:
		return "dangling"
	default:
		return "unknown"
	}
}

// Get fetches a node by id, returning a NotFoundError with the given
// kind when the row is missing.
func Get[T Node](db *gorm.DB, kind, id string) (T, error) {
	var node T
	if err := db.Where("id = ?", id).First(&node).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return node, apperr.NotFound(kind, id)
		}
		return node, fmt.Errorf("hierarchy: get %s %s: %w", kind, id, err)
	}
	return node, nil
}

// SetParent reparents a node. It rejects self-parenting and any parent
// that is a descendant of the node (both CycleError), and a parent id
// that does not resolve (NotFoundError). The validate-then-write sequence
// runs in one transaction so concurrent reparents cannot interleave a
// cycle past the check. Depth is derived on read, so no subtree rewrite
// is needed here.
func SetParent[T Node](db *gorm.DB, kind, id string, newParentID *string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		node, err := Get[T](tx, kind, id)
		if err != nil {
			return err
		}

		if newParentID == nil {
			return writeParent[T](tx, kind, id, nil)
		}

		if *newParentID == id {
			return &apperr.CycleError{NodeID: id, ParentID: *newParentID}
		}

		parent, err := Get[T](tx, kind, *newParentID)
		if err != nil {
			return err
		}

		// Walk upward from the proposed parent. If the node being moved
		// appears in that chain, the move would create a cycle.
		chain, err := walkUp[T](tx, parent)
		if err != nil {
			return err
		}
		for _, ancestor := range chain {
			if ancestor.NodeID() == node.NodeID() {
				return &apperr.CycleError{NodeID: id, ParentID: *newParentID}
			}
		}

		return writeParent[T](tx, kind, id, newParentID)
	})
}

func writeParent[T Node](tx *gorm.DB, kind, id string, parentID *string) error {
	if err := tx.Model(new(T)).Where("id = ?", id).Update("parent_id", parentID).Error; err != nil {
		return fmt.Errorf("hierarchy: set parent of %s %s: %w", kind, id, err)
	}
	return nil
}

// Ancestors returns the chain from immediate parent up to the root,
// nearest-first. Empty for a root node. A dangling parent ends the chain
// without error.
func Ancestors[T Node](db *gorm.DB, kind, id string) ([]T, error) {
	node, err := Get[T](db, kind, id)
	if err != nil {
		return nil, err
	}
	return walkUp[T](db, node)
}

// walkUp collects the ancestor chain of node, nearest-first. The walk is
// bounded by the total row count and a visited set so it terminates even
// if out-of-band edits left a stray cycle in the table.
func walkUp[T Node](db *gorm.DB, node T) ([]T, error) {
	limit, err := totalCount[T](db)
	if err != nil {
		return nil, err
	}

	chain := []T{}
	seen := map[string]bool{node.NodeID(): true}
	current := node
	for hops := int64(0); hops < limit; hops++ {
		parentID := current.NodeParentID()
		if parentID == nil {
			break
		}
		var parent T
		if err := db.Where("id = ?", *parentID).First(&parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Dangling pointer from an out-of-band delete. Treat as the
				// top of the chain.
				break
			}
			return nil, fmt.Errorf("hierarchy: walk ancestors of %s: %w", node.NodeID(), err)
		}
		if seen[parent.NodeID()] {
			// Pre-existing corruption. Stop rather than loop.
			break
		}
		seen[parent.NodeID()] = true
		chain = append(chain, parent)
		current = parent
	}
	return chain, nil
}

// Descendants returns every node transitively reachable via child links,
// breadth-first. Empty for a leaf.
func Descendants[T Node](db *gorm.DB, kind, id string) ([]T, error) {
	if _, err := Get[T](db, kind, id); err != nil {
		return nil, err
	}

	out := []T{}
	seen := map[string]bool{id: true}
	frontier := []string{id}
	for len(frontier) > 0 {
		var batch []T
		if err := db.Where("parent_id IN ?", frontier).Find(&batch).Error; err != nil {
			return nil, fmt.Errorf("hierarchy: descendants of %s %s: %w", kind, id, err)
		}
		var next []string
		for _, n := range batch {
			if seen[n.NodeID()] {
				continue
			}
			seen[n.NodeID()] = true
			out = append(out, n)
			next = append(next, n.NodeID())
		}
		frontier = next
	}
	return out, nil
}

// Root returns the topmost ancestor, or the node itself when it is
// already root (or dangling).
func Root[T Node](db *gorm.DB, kind, id string) (T, error) {
	node, err := Get[T](db, kind, id)
	if err != nil {
		return node, err
	}
	chain, err := walkUp[T](db, node)
	if err != nil {
		return node, err
	}
	if len(chain) == 0 {
		return node, nil
	}
	return chain[len(chain)-1], nil
}

// Depth returns the ancestor hop count; a root has depth 0. Always
// consistent with the current parent chain since it is derived on read.
func Depth[T Node](db *gorm.DB, kind, id string) (int, error) {
	chain, err := Ancestors[T](db, kind, id)
	if err != nil {
		return 0, err
	}
	return len(chain), nil
}

// IsRoot reports whether the node has no parent_id at all. A dangling
// node is not root; check StateOf to distinguish.
func IsRoot[T Node](db *gorm.DB, kind, id string) (bool, error) {
	node, err := Get[T](db, kind, id)
	if err != nil {
		return false, err
	}
	return node.NodeParentID() == nil, nil
}

// IsLeaf reports whether the node has no children.
func IsLeaf[T Node](db *gorm.DB, kind, id string) (bool, error) {
	n, err := ChildCount[T](db, kind, id)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// ChildCount counts direct children.
func ChildCount[T Node](db *gorm.DB, kind, id string) (int64, error) {
	if _, err := Get[T](db, kind, id); err != nil {
		return 0, err
	}
	var count int64
	if err := db.Model(new(T)).Where("parent_id = ?", id).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("hierarchy: child count of %s %s: %w", kind, id, err)
	}
	return count, nil
}

// StateOf classifies the node's parent link: root, attached, or dangling.
func StateOf[T Node](db *gorm.DB, kind, id string) (ParentState, error) {
	node, err := Get[T](db, kind, id)
	if err != nil {
		return ParentRoot, err
	}
	parentID := node.NodeParentID()
	if parentID == nil {
		return ParentRoot, nil
	}
	var parent T
	err = db.Where("id = ?", *parentID).First(&parent).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ParentDangling, nil
	}
	if err != nil {
		return ParentRoot, fmt.Errorf("hierarchy: parent state of %s %s: %w", kind, id, err)
	}
	return ParentAttached, nil
}

func totalCount[T Node](db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(new(T)).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("hierarchy: count rows: %w", err)
	}
	return count, nil
}
