package lfssim

// gc traces liveness from the checkpoint, compacts live blocks to a
// dense prefix in ascending address order, rewrites every address
// reference live blocks hold, and updates the in-memory imap.
func (e *Engine) gc() {
	live := e.traceLiveness()

	oldAddrs := make([]int, 0, len(live))
	for addr := 0; addr < e.store.Len(); addr++ {
		if live[addr] {
			oldAddrs = append(oldAddrs, addr)
		}
	}

	remap := make(map[int]int, len(oldAddrs))
	for newAddr, oldAddr := range oldAddrs {
		remap[oldAddr] = newAddr
	}

	rewritten := make([]Block, len(oldAddrs))
	for newAddr, oldAddr := range oldAddrs {
		rewritten[newAddr] = e.rewriteAddresses(e.store.Read(oldAddr), remap)
	}
	for newAddr, b := range rewritten {
		e.store.setAt(newAddr, b)
	}
	e.store.truncate(len(oldAddrs))

	for i := range e.imap.inodeMap {
		if e.imap.inodeMap[i] != noAddr {
			e.imap.inodeMap[i] = mustRemap(remap, e.imap.inodeMap[i])
		}
	}
	for i := range e.imap.cr {
		if e.imap.cr[i] != noAddr {
			e.imap.cr[i] = mustRemap(remap, e.imap.cr[i])
		}
	}
}

// traceLiveness computes the live set reachable from the checkpoint:
// the checkpoint itself, every non-sentinel CR entry (imap chunks),
// every inode the in-memory imap currently points at, and every
// non-sentinel pointer of those inodes.
func (e *Engine) traceLiveness() []bool {
	live := make([]bool, e.store.Len())
	live[AddrCheckpointBlock] = true

	for _, ptr := range e.imap.cr {
		if ptr != noAddr {
			live[ptr] = true
		}
	}

	var inodeAddrs []int
	for i := 0; i < NumInodes; i++ {
		addr := e.imap.inodeMap[i]
		if addr == noAddr {
			continue
		}
		live[addr] = true
		inodeAddrs = append(inodeAddrs, addr)
	}

	for _, addr := range inodeAddrs {
		inode := e.store.Read(addr).(*InodeBlock)
		for _, ptr := range inode.Pointers {
			if ptr != noAddr {
				live[ptr] = true
			}
		}
	}

	return live
}

// rewriteAddresses returns a copy of b with every address-valued field
// that points at a remapped block rewritten through remap. Sentinels
// (-1) are left untouched; any other value is, by the liveness
// invariant, guaranteed to be in remap, so a miss is a liveness-trace
// bug and we assert rather than silently ignore it.
func (e *Engine) rewriteAddresses(b Block, remap map[int]int) Block {
	switch blk := b.clone().(type) {
	case *CheckpointBlock:
		for i, v := range blk.Entries {
			if v != noAddr {
				blk.Entries[i] = mustRemap(remap, v)
			}
		}
		return blk
	case *ImapChunkBlock:
		for i, v := range blk.Entries {
			if v != noAddr {
				blk.Entries[i] = mustRemap(remap, v)
			}
		}
		return blk
	case *InodeBlock:
		for i, v := range blk.Pointers {
			if v != noAddr {
				blk.Pointers[i] = mustRemap(remap, v)
			}
		}
		return blk
	case *DirectoryBlock, *DataBlock:
		return blk
	default:
		panic("lfssim: gc encountered an unknown block type")
	}
}

func mustRemap(remap map[int]int, addr int) int {
	v, ok := remap[addr]
	if !ok {
		panic("lfssim: gc liveness trace missed a referenced address")
	}
	return v
}
