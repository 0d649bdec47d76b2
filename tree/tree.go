// Package tree builds the hash tree that the chunking core (package split)
// deliberately stays out of: spec.md describes "a hierarchical fan-out used
// by the surrounding system to build a tree of references over chunks" but
// keeps tree assembly an external collaborator. This package is that
// collaborator, adapted from bobg/hashsplit's TreeBuilder/Node/Seek (the
// only repo in the pack that builds exactly this level-indexed fan-out
// shape over a hashsplit chunk stream).
package tree

// Node is one node of the hash tree. A level-0 Node is a leaf holding the
// content keys of one or more chunks; a higher-level Node holds child
// Nodes instead.
type Node struct {
	// Level is this node's height in the tree; leaves are level 0.
	Level int

	// Nodes holds child nodes for level > 0; Leaves holds content keys for
	// level 0. Exactly one of these is populated.
	Nodes  []*Node
	Leaves [][]byte

	// Size is the total size in bytes of all data reachable from this
	// node, and Offset is the byte position of this node's first byte in
	// the original input stream (the sum of the Size of every node to its
	// left).
	Size   uint64
	Offset uint64
}

// Builder assembles the chunk stream produced by split.Chunks into a hash
// tree. Add is typically called once per emitted chunk, using the chunk's
// content key (the output of hashing its bytes, a cryptographic
// collaborator per spec.md §1(ii)) and the level reported for that chunk.
type Builder struct {
	levels []*Node
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{levels: []*Node{{Level: 0}}}
}

// Add records one chunk's content key, original size, and level.
//
// A wider fan-out than the chunk stream's native level granularity can be
// obtained by dividing level down (see spec.md's FANOUT discussion);
// Builder does not itself reinterpret level.
func (b *Builder) Add(key []byte, size uint64, level int) {
	b.levels[0].Leaves = append(b.levels[0].Leaves, key)
	for _, n := range b.levels {
		n.Size += size
	}
	for i := 0; i < level; i++ {
		if i == len(b.levels)-1 {
			b.levels = append(b.levels, &Node{
				Level: i + 1,
				Size:  b.levels[i].Size,
			})
		}
		b.levels[i+1].Nodes = append(b.levels[i+1].Nodes, b.levels[i])
		b.levels[i] = &Node{
			Level:  i,
			Offset: b.levels[i+1].Offset + b.levels[i+1].Size,
		}
	}
}

// Root finalizes the tree and returns its root node. Root may be called
// only once; subsequent calls observe a Builder left in its post-Root
// state.
func (b *Builder) Root() *Node {
	if len(b.levels[0].Leaves) > 0 {
		for i := 0; i < len(b.levels)-1; i++ {
			b.levels[i+1].Nodes = append(b.levels[i+1].Nodes, b.levels[i])
		}
	}
	root := b.levels[len(b.levels)-1]
	for len(root.Nodes) == 1 {
		root = root.Nodes[0]
	}
	return root
}

// Seek returns the level-0 node covering byte position pos (Offset <= pos
// < Offset+Size), or nil if pos is out of range.
func Seek(node *Node, pos uint64) *Node {
	if node == nil || pos < node.Offset || pos >= node.Offset+node.Size {
		return nil
	}
	if len(node.Nodes) > 0 {
		for _, child := range node.Nodes {
			if n := Seek(child, pos); n != nil {
				return n
			}
		}
		return nil
	}
	return node
}
