package lfssim

import "strings"

// walkResult is the outcome of resolving an absolute path: the leaf's
// inum (noAddr if not found but the parent chain resolved), the leaf's
// base name, the parent directory's inum, and the parent's current
// inode. parentInum is noAddr if the parent chain itself failed.
type walkResult struct {
	inum       int
	name       string
	parentInum int
	parent     *InodeBlock
}

// walkPath parses an absolute "/"-separated path and resolves each
// intermediate component to a directory inode.
func (e *Engine) walkPath(path string) walkResult {
	if !strings.HasPrefix(path, "/") {
		e.errs.log(ErrPathMalformed.Error())
		return walkResult{inum: noAddr, parentInum: noAddr}
	}

	parts := strings.Split(path, "/")
	parentInum := RootInode

	for i := 1; i < len(parts)-1; i++ {
		inum, _ := e.lookupInDir(parentInum, parts[i])
		if inum == noAddr {
			e.errs.log("directory " + parts[i] + " not found")
			return walkResult{inum: noAddr, parentInum: noAddr}
		}
		inode, _ := e.imap.getInode(inum)
		if inode.Kind != InodeDirectory {
			e.errs.log("invalid element of path [" + parts[i] + "] (not a dir)")
			return walkResult{inum: noAddr, parentInum: noAddr}
		}
		parentInum = inum
	}

	name := parts[len(parts)-1]
	inum, parentInode := e.lookupInDir(parentInum, name)
	return walkResult{inum: inum, name: name, parentInum: parentInum, parent: parentInode}
}

// lookupInDir scans the directory inode's pointer slots [0, size) in
// order and returns the first entry matching name, along with the
// directory's own current inode. name == "-" never matches a real
// entry since "-" denotes a free slot.
func (e *Engine) lookupInDir(dirInum int, name string) (int, *InodeBlock) {
	dirInode, _ := e.imap.getInode(dirInum)

	for i := 0; i < dirInode.Size; i++ {
		addr := dirInode.Pointers[i]
		if addr == noAddr {
			continue
		}
		block := e.store.Read(addr).(*DirectoryBlock)
		for _, entry := range block.Entries {
			if entry.Name == name {
				return entry.Inum, dirInode
			}
		}
	}
	return noAddr, dirInode
}

// dirSlot identifies one (dirblock index within the inode's pointer
// array, slot index within that dirblock) location.
type dirSlot struct {
	dirblockIndex int
	slotIndex     int
}

// findMatchingDirSlot returns the first slot in dirInode's directory
// blocks whose entry name equals name, scanning blocks in pointer
// order [0, size). Pass name == "-" to find a free slot.
func (e *Engine) findMatchingDirSlot(name string, dirInode *InodeBlock) dirSlot {
	for i := 0; i < dirInode.Size; i++ {
		block := e.store.Read(dirInode.Pointers[i]).(*DirectoryBlock)
		for j, entry := range block.Entries {
			if entry.Name == name {
				return dirSlot{dirblockIndex: i, slotIndex: j}
			}
		}
	}
	return dirSlot{dirblockIndex: noAddr, slotIndex: noAddr}
}

// addDirEntryResult carries the outcome of addDirEntry: which pointer
// slot of the parent inode now owns the block, the parent's new size,
// and the composed directory block ready to be appended. A failed call
// is signaled by indexToUpdate == noAddr.
type addDirEntryResult struct {
	indexToUpdate int
	parentSize    int
	block         *DirectoryBlock
}

// addDirEntry reuses a free slot in an existing directory block if one
// exists, else grows into a fresh directory block if the parent inode
// has a free pointer, else fails (directory full).
func (e *Engine) addDirEntry(parentInode *InodeBlock, name string, inum int) addDirEntryResult {
	slot := e.findMatchingDirSlot("-", parentInode)

	if slot.dirblockIndex != noAddr {
		existing := e.store.Read(parentInode.Pointers[slot.dirblockIndex]).(*DirectoryBlock)
		updated := existing.clone().(*DirectoryBlock)
		updated.Entries[slot.slotIndex] = DirEntry{Name: name, Inum: inum}
		return addDirEntryResult{
			indexToUpdate: slot.dirblockIndex,
			parentSize:    parentInode.Size,
			block:         updated,
		}
	}

	if parentInode.Size == InodePtrs {
		return addDirEntryResult{indexToUpdate: noAddr}
	}

	fresh := newEmptyDirBlock()
	fresh.Entries[0] = DirEntry{Name: name, Inum: inum}
	return addDirEntryResult{
		indexToUpdate: parentInode.Size,
		parentSize:    parentInode.Size + 1,
		block:         fresh,
	}
}
