package lfssim

// imap is the in-memory inode map plus the in-memory mirror of the
// checkpoint region. Its persistent form is spread across ImapChunkBlock
// blocks; cr holds the disk address of the current chunk for each of
// the ImapPtrsInCR chunks, and is the sole root of the persistent index.
type imap struct {
	store *Store

	inodeMap [NumInodes]int    // inum -> current inode address
	cr       [ImapPtrsInCR]int // chunk number -> current ImapChunkBlock address

	useDiskCR bool
}

func newImap(store *Store, useDiskCR bool) *imap {
	m := &imap{store: store, useDiskCR: useDiskCR}
	for i := range m.inodeMap {
		m.inodeMap[i] = noAddr
	}
	for i := range m.cr {
		m.cr[i] = noAddr
	}
	return m
}

func chunkOf(inum int) int {
	return inum / InodesPerImapChunk
}

func offsetOf(inum int) int {
	return inum % InodesPerImapChunk
}

// remap sets the in-memory imap entry for inum. It does not, by
// itself, cause any disk write.
func (m *imap) remap(inum, addr int) {
	m.inodeMap[inum] = addr
}

// allocateInode scans for the first free inum (sequential-first-free
// allocation policy). It provisionally
// claims the slot with a non-sentinel marker so a second call in the
// same operation does not return the same inum before the real address
// is known; callers must either remap it for real or free it.
func (m *imap) allocateInode() int {
	for i := 0; i < NumInodes; i++ {
		if m.inodeMap[i] == noAddr {
			m.inodeMap[i] = 1 // provisional, overwritten by remap before use
			return i
		}
	}
	return noAddr
}

// freeInode returns inum to the free pool.
func (m *imap) freeInode(inum int) {
	m.inodeMap[inum] = noAddr
}

// updateImap appends a fresh ImapChunkBlock for each distinct chunk
// touched by inums, reflecting the current in-memory slice for that
// chunk, and updates the in-memory CR entry. Each chunk is written at
// most once per call.
func (m *imap) updateImap(inums ...int) {
	seen := make(map[int]bool, len(inums))
	for _, inum := range inums {
		c := chunkOf(inum)
		if seen[c] {
			continue
		}
		seen[c] = true
		addr := m.store.Append(m.makeChunk(c))
		m.cr[c] = addr
	}
}

func (m *imap) makeChunk(c int) *ImapChunkBlock {
	chunk := &ImapChunkBlock{}
	start := c * InodesPerImapChunk
	for i := 0; i < InodesPerImapChunk; i++ {
		chunk.Entries[i] = m.inodeMap[start+i]
	}
	return chunk
}

// crSync overwrites the checkpoint block with the current in-memory CR.
func (m *imap) crSync() {
	cp := &CheckpointBlock{Entries: m.cr}
	m.store.OverwriteCheckpoint(cp)
}

// resolve returns the current disk address of inum, via the memory
// path or the disk path depending on how the imap was constructed.
func (m *imap) resolve(inum int) int {
	if !m.useDiskCR {
		return m.inodeMap[inum]
	}

	cpBlock, ok := m.store.Read(AddrCheckpointBlock).(*CheckpointBlock)
	if !ok {
		panic("lfssim: address 0 is not a checkpoint block")
	}
	chunkAddr := cpBlock.Entries[chunkOf(inum)]
	if chunkAddr == noAddr {
		return noAddr
	}
	chunkBlock, ok := m.store.Read(chunkAddr).(*ImapChunkBlock)
	if !ok {
		panic("lfssim: checkpoint region points at a non-imap block")
	}
	return chunkBlock.Entries[offsetOf(inum)]
}

// getInode resolves inum to its current InodeBlock.
func (m *imap) getInode(inum int) (*InodeBlock, int) {
	addr := m.resolve(inum)
	if addr == noAddr {
		return nil, noAddr
	}
	inode, ok := m.store.Read(addr).(*InodeBlock)
	if !ok {
		panic("lfssim: imap entry does not reference an inode block")
	}
	return inode, addr
}
