package lfssim

import (
	"fmt"
	"strings"
)

// Dump renders every block on disk as a human-readable listing,
// annotated with liveness. It is a diagnostic aid, not part of the
// engine's persistent contract.
func (e *Engine) Dump() string {
	return e.dumpRange(0, e.store.Len())
}

// DumpPartial renders the checkpoint block (when checkpoint forcing is
// enabled or showCheckpoint is true; with forcing enabled it is followed
// by a "..." line), then every block appended since the previous
// DumpPartial call.
func (e *Engine) DumpPartial(showCheckpoint bool) string {
	var b strings.Builder
	if showCheckpoint || !e.noForceCheckpoints {
		b.WriteString(e.dumpRange(0, 1))
	}
	if !e.noForceCheckpoints {
		b.WriteString("...\n")
	}
	b.WriteString(e.dumpRange(e.dumpLast, e.store.Len()))
	e.dumpLast = e.store.Len()
	return b.String()
}

func (e *Engine) dumpRange(start, end int) string {
	live := e.traceLiveness()
	var b strings.Builder
	for addr := start; addr < end; addr++ {
		block := e.store.Read(addr)
		marker := "     "
		if addr < len(live) && live[addr] {
			marker = "live "
		}
		fmt.Fprintf(&b, "[%4d] %s%s\n", addr, marker, describeBlock(block))
	}
	return b.String()
}

func describeBlock(b Block) string {
	switch blk := b.(type) {
	case *CheckpointBlock:
		return "checkpoint: " + formatAddrs(blk.Entries[:])
	case *ImapChunkBlock:
		return "chunk(imap): " + formatAddrs(blk.Entries[:])
	case *InodeBlock:
		return fmt.Sprintf("type:%s size:%d refs:%d ptrs: %s",
			blk.Kind, blk.Size, blk.Refs, formatAddrs(blk.Pointers[:]))
	case *DirectoryBlock:
		var parts []string
		for _, entry := range blk.Entries {
			if entry.Inum != noAddr {
				parts = append(parts, fmt.Sprintf("[%s,%d]", entry.Name, entry.Inum))
			} else {
				parts = append(parts, "--")
			}
		}
		return strings.Join(parts, " ")
	case *DataBlock:
		return blk.Contents
	default:
		return "error: unknown block type"
	}
}

func formatAddrs(addrs []int) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		if a == noAddr {
			parts[i] = "--"
		} else {
			parts[i] = fmt.Sprintf("%d", a)
		}
	}
	return strings.Join(parts, " ")
}
