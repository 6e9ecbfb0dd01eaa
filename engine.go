package lfssim

import (
	"log"
	"math/rand"
	"time"
)

// Engine is the log-structured filesystem simulator: a fixed-capacity
// array of typed blocks with exactly one mutable slot (the checkpoint,
// address 0) and an otherwise strictly append-only suffix.
type Engine struct {
	store *Store
	imap  *imap
	errs  errorList

	noForceCheckpoints bool
	inodePolicy        InodePolicy
	payloadGen         Generator
	randSeed           *int64
	rng                *rand.Rand

	dumpLast int // dump assistance: first un-dumped address for DumpPartial
}

// New constructs an Engine with the initial-disk layout: a checkpoint
// pointing at the first imap chunk, a root directory block, a root
// inode, and that imap chunk, in that order.
func New(opts ...Option) *Engine {
	e := &Engine{
		store:      &Store{},
		payloadGen: payloadGenerators[DefaultPayloadPolicy],
	}
	e.imap = newImap(e.store, false)

	for _, opt := range opts {
		opt(e)
	}

	if e.rng == nil {
		e.rng = seededRand(e.randSeed)
	}

	e.bootstrap()
	e.dumpLast = 1
	e.errs.clear()
	return e
}

// seededRand returns a new random source pinned to seed if non-nil,
// otherwise seeded from the current time.
func seededRand(seed *int64) *rand.Rand {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return rand.New(rand.NewSource(s))
}

// bootstrap lays down the four initial blocks: disk[0] checkpoint
// (CR[0]=3), disk[1] root dirblock, disk[2] root inode, disk[3] imap
// chunk 0. Order of appends defines addresses.
func (e *Engine) bootstrap() {
	cr := newCheckpointBlock()
	cr.Entries[0] = 3
	e.store.Append(cr)
	e.imap.cr = cr.Entries

	e.store.Append(newRootDirBlock(RootInode, RootInode))

	root := newInode(InodeDirectory, 1, 2)
	root.Pointers[0] = 1
	rootAddr := e.store.Append(root)

	e.imap.remap(RootInode, rootAddr)

	chunkAddr := e.store.Append(e.imap.makeChunk(0))
	e.imap.cr[0] = chunkAddr
}

// Errors returns the error strings accumulated by the most recently
// executed operation.
func (e *Engine) Errors() []string {
	return e.errs.Errors()
}

// DiskLen reports the current number of blocks on the disk, including
// the checkpoint block.
func (e *Engine) DiskLen() int {
	return e.store.Len()
}

// BlockAt exposes the block at addr for structural assertions. The
// engine has no read path for file content, so tests and diagnostics
// assert on block shape and addresses instead.
func (e *Engine) BlockAt(addr int) Block {
	return e.store.Read(addr)
}

// InodeAddr resolves inum to its current disk address using the
// engine's configured lookup path (memory or disk), or noAddr if the
// inum is free.
func (e *Engine) InodeAddr(inum int) int {
	return e.imap.resolve(inum)
}

// maybeSync performs cr_sync unless checkpoint forcing has been
// disabled via NoForceCheckpoints.
func (e *Engine) maybeSync() {
	if !e.noForceCheckpoints {
		e.imap.crSync()
	}
}

// spaceCheck runs GC synchronously at the head of every namespace
// operation if disk utilization has crossed GCThreshold.
func (e *Engine) spaceCheck() {
	if float64(e.store.Len()) > float64(NumBlocks)*GCThreshold {
		log.Printf("lfssim: %d blocks in use, triggering garbage collection", e.store.Len())
		before := e.store.Len()
		e.gc()
		log.Printf("lfssim: gc finished, %d -> %d blocks", before, e.store.Len())
	}
}
