package ecs

import "github.com/TheBitDrifter/mask"

// QueryNode is a component-set predicate evaluated against an archetype's
// signature (spec §6, Queries). Nodes are cheap value types built once and
// reused across passes over World.Archetypes; And/Or/Not mirror the node shapes in
// TheBitDrifter-warehouse/query.go, adapted here to operate on Archetype
// directly instead of warehouse's Storage abstraction.
type QueryNode interface {
	Evaluate(a *Archetype) bool
}

func signatureOf(ids []TypeID) mask.Mask {
	var m mask.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}

type andNode struct {
	sig mask.Mask
}

// And matches archetypes carrying every listed component.
func And(ids ...TypeID) QueryNode {
	return andNode{sig: signatureOf(ids)}
}

func (n andNode) Evaluate(a *Archetype) bool {
	return a.signature().ContainsAll(n.sig)
}

type orNode struct {
	sig mask.Mask
}

// Or matches archetypes carrying at least one listed component.
func Or(ids ...TypeID) QueryNode {
	return orNode{sig: signatureOf(ids)}
}

func (n orNode) Evaluate(a *Archetype) bool {
	return a.signature().ContainsAny(n.sig)
}

type notNode struct {
	sig mask.Mask
}

// Not matches archetypes carrying none of the listed components.
func Not(ids ...TypeID) QueryNode {
	return notNode{sig: signatureOf(ids)}
}

func (n notNode) Evaluate(a *Archetype) bool {
	return a.signature().ContainsNone(n.sig)
}

// allNode combines several nodes with logical AND, letting callers compose
// e.g. And(posID, velID) with Not(deadID) in one query.
type allNode struct {
	nodes []QueryNode
}

// All matches archetypes satisfying every given node.
func All(nodes ...QueryNode) QueryNode {
	return allNode{nodes: nodes}
}

func (n allNode) Evaluate(a *Archetype) bool {
	for _, node := range n.nodes {
		if !node.Evaluate(a) {
			return false
		}
	}
	return true
}
