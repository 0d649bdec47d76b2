package tree

import "testing"

func TestBuilderSizeAccumulates(t *testing.T) {
	b := NewBuilder()
	b.Add([]byte("a"), 10, 0)
	b.Add([]byte("b"), 20, 0)
	b.Add([]byte("c"), 5, 1)

	root := b.Root()
	if root.Size != 35 {
		t.Fatalf("root.Size = %d, want 35", root.Size)
	}
}

func TestBuilderFlatWhenNoLevels(t *testing.T) {
	b := NewBuilder()
	b.Add([]byte("a"), 1, 0)
	b.Add([]byte("b"), 1, 0)
	root := b.Root()
	if root.Level != 0 {
		t.Fatalf("root.Level = %d, want 0", root.Level)
	}
	if len(root.Leaves) != 2 {
		t.Fatalf("root.Leaves = %d, want 2", len(root.Leaves))
	}
}

func TestSeekFindsOwningLeaf(t *testing.T) {
	b := NewBuilder()
	b.Add([]byte("a"), 10, 0)
	b.Add([]byte("b"), 10, 1)
	b.Add([]byte("c"), 10, 0)
	root := b.Root()

	for _, pos := range []uint64{0, 15, 25} {
		if n := Seek(root, pos); n == nil {
			t.Errorf("Seek(%d) = nil, want a node", pos)
		}
	}

	if n := Seek(root, root.Size+1); n != nil {
		t.Fatalf("Seek past the end of the tree = %+v, want nil", n)
	}
}
