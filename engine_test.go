package lfssim_test

import (
	"testing"

	"github.com/KarpelesLab/lfssim"
)

// TestFreshEngineLayout checks the bootstrap layout a freshly
// constructed Engine lays down.
func TestFreshEngineLayout(t *testing.T) {
	e := lfssim.New()

	if got := e.DiskLen(); got != 4 {
		t.Fatalf("DiskLen() = %d, want 4", got)
	}

	cp, ok := e.BlockAt(0).(*lfssim.CheckpointBlock)
	if !ok {
		t.Fatalf("disk[0] is not a CheckpointBlock")
	}
	wantCR := [lfssim.ImapPtrsInCR]int{3, -1, -1, -1, -1, -1, -1, -1}
	if cp.Entries != wantCR {
		t.Errorf("checkpoint entries = %v, want %v", cp.Entries, wantCR)
	}

	root, ok := e.BlockAt(2).(*lfssim.InodeBlock)
	if !ok {
		t.Fatalf("disk[2] is not an InodeBlock")
	}
	if root.Kind != lfssim.InodeDirectory || root.Size != 1 || root.Refs != 2 {
		t.Errorf("root inode = %+v, want {dir size:1 refs:2}", root)
	}
	wantPtrs := [lfssim.InodePtrs]int{1, -1, -1, -1}
	if root.Pointers != wantPtrs {
		t.Errorf("root inode pointers = %v, want %v", root.Pointers, wantPtrs)
	}

	chunk, ok := e.BlockAt(3).(*lfssim.ImapChunkBlock)
	if !ok {
		t.Fatalf("disk[3] is not an ImapChunkBlock")
	}
	wantChunk := [lfssim.InodesPerImapChunk]int{2, -1, -1, -1, -1, -1, -1, -1}
	if chunk.Entries != wantChunk {
		t.Errorf("imap chunk entries = %v, want %v", chunk.Entries, wantChunk)
	}
}

// TestCreateFileAtRoot checks the append cascade a single root-level
// file create produces.
func TestCreateFileAtRoot(t *testing.T) {
	e := lfssim.New()

	if res := e.FileCreate("/a"); res != 0 {
		t.Fatalf("FileCreate(/a) = %d, want 0; errors: %v", res, e.Errors())
	}

	if addr := e.InodeAddr(1); addr == lfssim.NoAddr {
		t.Fatalf("inum 1 was not allocated")
	}

	leafAddr := e.InodeAddr(1)
	leaf, ok := e.BlockAt(leafAddr).(*lfssim.InodeBlock)
	if !ok {
		t.Fatalf("leaf inode address %d is not an InodeBlock", leafAddr)
	}
	if leaf.Kind != lfssim.InodeRegular || leaf.Size != 0 || leaf.Refs != 1 {
		t.Errorf("leaf inode = %+v, want {reg size:0 refs:1}", leaf)
	}

	rootAddr := e.InodeAddr(lfssim.RootInode)
	root, ok := e.BlockAt(rootAddr).(*lfssim.InodeBlock)
	if !ok {
		t.Fatalf("root inode address %d is not an InodeBlock", rootAddr)
	}
	// Root's own dirblock is seeded with "." and ".." in slots 0 and 1,
	// so the first real entry lands in the first free slot, index 2.
	dirBlock, ok := e.BlockAt(root.Pointers[0]).(*lfssim.DirectoryBlock)
	if !ok {
		t.Fatalf("root dirblock address %d is not a DirectoryBlock", root.Pointers[0])
	}
	if dirBlock.Entries[2] != (lfssim.DirEntry{Name: "a", Inum: 1}) {
		t.Errorf("root dirblock slot 2 = %+v, want {a 1}", dirBlock.Entries[2])
	}

	cp, ok := e.BlockAt(0).(*lfssim.CheckpointBlock)
	if !ok {
		t.Fatalf("disk[0] is not a CheckpointBlock after sync")
	}
	if cp.Entries[0] == -1 {
		t.Errorf("checkpoint chunk 0 pointer was never synced")
	}
}

// TestWriteBeyondCapacity checks that a write is truncated to the
// number of pointer slots actually available.
func TestWriteBeyondCapacity(t *testing.T) {
	e := lfssim.New()
	if res := e.FileCreate("/a"); res != 0 {
		t.Fatalf("FileCreate(/a) = %d, want 0", res)
	}

	written := e.FileWrite("/a", 2, 10)
	if written != 2 {
		t.Fatalf("FileWrite(/a, 2, 10) = %d, want 2", written)
	}

	leaf, ok := e.BlockAt(e.InodeAddr(1)).(*lfssim.InodeBlock)
	if !ok {
		t.Fatalf("leaf inode is not an InodeBlock")
	}
	if leaf.Size != 4 {
		t.Errorf("leaf.Size = %d, want 4", leaf.Size)
	}
	if leaf.Pointers[0] != lfssim.NoAddr || leaf.Pointers[1] != lfssim.NoAddr {
		t.Errorf("leaf.Pointers[0:2] = %v, want both -1", leaf.Pointers[:2])
	}
	if leaf.Pointers[2] == lfssim.NoAddr || leaf.Pointers[3] == lfssim.NoAddr {
		t.Errorf("leaf.Pointers[2:4] = %v, want both set", leaf.Pointers[2:])
	}
}

// TestDirectoryFull checks the directory-full rejection path. Root
// starts with 2 of its first dirblock's 4 slots occupied by "." and
// "..", and can grow up to InodePtrs dirblocks, so it takes
// InodePtrs*InodePtrs-2 creates to exhaust every slot before the next
// create is rejected.
func TestDirectoryFull(t *testing.T) {
	e := lfssim.New()

	capacity := lfssim.InodePtrs*lfssim.InodePtrs - 2
	for i := 0; i < capacity; i++ {
		name := "/f" + string(rune('a'+i))
		if res := e.FileCreate(name); res != 0 {
			t.Fatalf("FileCreate(%s) [%d/%d] = %d, want 0; errors: %v", name, i+1, capacity, res, e.Errors())
		}
	}

	before := map[int]int{}
	for i := 0; i < lfssim.NumInodes; i++ {
		before[i] = e.InodeAddr(i)
	}

	if res := e.FileCreate("/overflow"); res != -1 {
		t.Fatalf("overflowing FileCreate = %d, want -1 (directory full)", res)
	}
	if len(e.Errors()) == 0 {
		t.Errorf("expected a DirectoryFull error to be logged")
	}

	for i := 0; i < lfssim.NumInodes; i++ {
		if e.InodeAddr(i) != before[i] {
			t.Errorf("inum %d address changed after failed create: %d -> %d", i, before[i], e.InodeAddr(i))
		}
	}
}

// TestDeletePreservesSizeAndFreesInode checks that deleting a file
// frees its inum, frees its directory slot, and leaves the parent
// directory's recorded size untouched.
func TestDeletePreservesSizeAndFreesInode(t *testing.T) {
	e := lfssim.New()
	if res := e.FileCreate("/a"); res != 0 {
		t.Fatalf("FileCreate(/a) = %d, want 0", res)
	}

	rootBefore, _ := e.BlockAt(e.InodeAddr(lfssim.RootInode)).(*lfssim.InodeBlock)
	sizeBefore := rootBefore.Size

	if res := e.FileDelete("/a"); res != 0 {
		t.Fatalf("FileDelete(/a) = %d, want 0; errors: %v", res, e.Errors())
	}

	if addr := e.InodeAddr(1); addr != lfssim.NoAddr {
		t.Errorf("inum 1 still mapped to %d after delete", addr)
	}

	rootAfter, _ := e.BlockAt(e.InodeAddr(lfssim.RootInode)).(*lfssim.InodeBlock)
	if rootAfter.Size != sizeBefore {
		t.Errorf("root size changed from %d to %d after delete", sizeBefore, rootAfter.Size)
	}

	dirBlock, _ := e.BlockAt(rootAfter.Pointers[0]).(*lfssim.DirectoryBlock)
	if dirBlock.Entries[2].Name != "-" || dirBlock.Entries[2].Inum != lfssim.NoAddr {
		t.Errorf("root dirblock slot 2 = %+v, want free slot", dirBlock.Entries[2])
	}

	if res := e.FileCreate("/a"); res != 0 {
		t.Fatalf("recreate FileCreate(/a) = %d, want 0", res)
	}
	if addr := e.InodeAddr(1); addr == lfssim.NoAddr {
		t.Errorf("inum 1 was not reallocated on recreate")
	}
}

func TestWriteReturnsExactlyFittingCount(t *testing.T) {
	testCases := []struct {
		offset, nblks, want int
	}{
		{0, 1, 1},
		{0, 4, 4},
		{0, 10, 4},
		{3, 1, 1},
		{3, 5, 1},
		{1, 0, 0},
		{0, -1, 0},
	}

	for _, tc := range testCases {
		e := lfssim.New()
		e.FileCreate("/a")
		got := e.FileWrite("/a", tc.offset, tc.nblks)
		if got != tc.want {
			t.Errorf("FileWrite(/a, %d, %d) = %d, want %d", tc.offset, tc.nblks, got, tc.want)
		}
	}
}

func TestWriteRejectsBadInputs(t *testing.T) {
	e := lfssim.New()
	e.FileCreate("/a")
	e.DirCreate("/d")

	if res := e.FileWrite("/missing", 0, 1); res != -1 {
		t.Errorf("write to missing file = %d, want -1", res)
	}
	if res := e.FileWrite("/d", 0, 1); res != -1 {
		t.Errorf("write to directory = %d, want -1", res)
	}
	if res := e.FileWrite("/a", -1, 1); res != -1 {
		t.Errorf("write with negative offset = %d, want -1", res)
	}
	if res := e.FileWrite("/a", lfssim.InodePtrs, 1); res != -1 {
		t.Errorf("write with offset == InodePtrs = %d, want -1", res)
	}
}

func TestCreateRejectsDuplicatesAndBadPaths(t *testing.T) {
	e := lfssim.New()
	e.FileCreate("/a")

	if res := e.FileCreate("/a"); res != -1 {
		t.Errorf("duplicate FileCreate = %d, want -1", res)
	}
	if res := e.FileCreate("relative"); res != -1 {
		t.Errorf("FileCreate(relative) = %d, want -1", res)
	}
	if res := e.FileCreate("/missing-dir/a"); res != -1 {
		t.Errorf("FileCreate under missing dir = %d, want -1", res)
	}
	e.FileCreate("/f")
	if res := e.FileCreate("/f/a"); res != -1 {
		t.Errorf("FileCreate under a regular file = %d, want -1", res)
	}
}

func TestDeleteRejectsMissingAndWrongKind(t *testing.T) {
	e := lfssim.New()
	e.DirCreate("/d")

	if res := e.FileDelete("/missing"); res != -1 {
		t.Errorf("delete missing file = %d, want -1", res)
	}
	if res := e.FileDelete("/d"); res != -1 {
		t.Errorf("delete directory = %d, want -1", res)
	}
}

func TestDirCreateUpdatesParentRefsAndChildLinks(t *testing.T) {
	e := lfssim.New()
	if res := e.DirCreate("/sub"); res != 0 {
		t.Fatalf("DirCreate(/sub) = %d, want 0", res)
	}

	root, _ := e.BlockAt(e.InodeAddr(lfssim.RootInode)).(*lfssim.InodeBlock)
	if root.Refs != 3 {
		t.Errorf("root refs = %d, want 3 (2 + 1 child subdir)", root.Refs)
	}

	sub, _ := e.BlockAt(e.InodeAddr(1)).(*lfssim.InodeBlock)
	if sub.Kind != lfssim.InodeDirectory || sub.Size != 1 || sub.Refs != 2 {
		t.Errorf("sub inode = %+v, want {dir size:1 refs:2}", sub)
	}

	dirBlock, _ := e.BlockAt(sub.Pointers[0]).(*lfssim.DirectoryBlock)
	if dirBlock.Entries[0] != (lfssim.DirEntry{Name: ".", Inum: 1}) {
		t.Errorf("sub '.' entry = %+v, want {. 1}", dirBlock.Entries[0])
	}
	if dirBlock.Entries[1] != (lfssim.DirEntry{Name: "..", Inum: lfssim.RootInode}) {
		t.Errorf("sub '..' entry = %+v, want {.. 0}", dirBlock.Entries[1])
	}
}

func TestNestedPathResolution(t *testing.T) {
	e := lfssim.New()
	e.DirCreate("/sub")
	if res := e.FileCreate("/sub/leaf"); res != 0 {
		t.Fatalf("FileCreate(/sub/leaf) = %d, want 0; errors: %v", res, e.Errors())
	}
	if res := e.FileWrite("/sub/leaf", 0, 1); res != 1 {
		t.Fatalf("FileWrite(/sub/leaf) = %d, want 1", res)
	}
	if res := e.FileDelete("/sub/leaf"); res != 0 {
		t.Fatalf("FileDelete(/sub/leaf) = %d, want 0", res)
	}
}
