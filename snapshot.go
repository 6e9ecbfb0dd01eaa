package lfssim

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// snapshotCodec compresses/decompresses a gob-encoded snapshot payload.
// Registered through the same name-to-handler pattern as a compression
// registry; see snapshot_zstd.go and snapshot_xz.go for the build-tag
// gated third-party codecs.
type snapshotCodec struct {
	Compress   func([]byte) ([]byte, error)
	Decompress func([]byte) ([]byte, error)
}

var snapshotCodecs = map[string]snapshotCodec{}

// RegisterSnapshotCodec adds a named (de)compression codec for
// Engine.Snapshot/RestoreSnapshot. Re-registering a name overwrites it.
func RegisterSnapshotCodec(name string, c snapshotCodec) {
	snapshotCodecs[name] = c
}

// snapshotEnvelope is the gob-serializable shape of a disk snapshot: the
// blocks in address order plus enough imap state to resume operation.
type snapshotEnvelope struct {
	Blocks   []gobBlock
	InodeMap [NumInodes]int
	CR       [ImapPtrsInCR]int
}

// gobBlock is a type-tagged wrapper so gob (which cannot encode an
// interface field directly without registration per concrete type) can
// round-trip the closed Block union.
type gobBlock struct {
	Kind BlockType
	CP   *CheckpointBlock
	IC   *ImapChunkBlock
	IN   *InodeBlock
	DB   *DirectoryBlock
	DA   *DataBlock
}

func toGobBlock(b Block) gobBlock {
	g := gobBlock{Kind: b.Type()}
	switch blk := b.(type) {
	case *CheckpointBlock:
		g.CP = blk
	case *ImapChunkBlock:
		g.IC = blk
	case *InodeBlock:
		g.IN = blk
	case *DirectoryBlock:
		g.DB = blk
	case *DataBlock:
		g.DA = blk
	}
	return g
}

func (g gobBlock) toBlock() Block {
	switch g.Kind {
	case BlockCheckpoint:
		return g.CP
	case BlockImapChunk:
		return g.IC
	case BlockInode:
		return g.IN
	case BlockDirectory:
		return g.DB
	case BlockData:
		return g.DA
	default:
		panic("lfssim: snapshot contains an unknown block type")
	}
}

// Snapshot serializes the current disk and imap state to bytes for
// diagnostic export, optionally compressing the result with a codec
// registered under codecName. An empty codecName leaves the gob payload
// uncompressed.
func (e *Engine) Snapshot(codecName string) ([]byte, error) {
	env := snapshotEnvelope{
		InodeMap: e.imap.inodeMap,
		CR:       e.imap.cr,
	}
	for i := 0; i < e.store.Len(); i++ {
		env.Blocks = append(env.Blocks, toGobBlock(e.store.Read(i)))
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return nil, fmt.Errorf("lfssim: encode snapshot: %w", err)
	}
	if codecName == "" {
		return buf.Bytes(), nil
	}

	codec, ok := snapshotCodecs[codecName]
	if !ok {
		return nil, fmt.Errorf("lfssim: unknown snapshot codec %q", codecName)
	}
	compressed, err := codec.Compress(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("lfssim: compress snapshot: %w", err)
	}
	return compressed, nil
}

// RestoreSnapshot rebuilds an Engine from bytes previously produced by
// Snapshot with the same codecName. It does not re-run bootstrap: the
// restored Engine's disk and imap are exactly what was captured.
func RestoreSnapshot(data []byte, codecName string, opts ...Option) (*Engine, error) {
	payload := data
	if codecName != "" {
		codec, ok := snapshotCodecs[codecName]
		if !ok {
			return nil, fmt.Errorf("lfssim: unknown snapshot codec %q", codecName)
		}
		decompressed, err := codec.Decompress(data)
		if err != nil {
			return nil, fmt.Errorf("lfssim: decompress snapshot: %w", err)
		}
		payload = decompressed
	}

	var env snapshotEnvelope
	if err := gob.NewDecoder(bytes.NewReader(payload)).Decode(&env); err != nil {
		return nil, fmt.Errorf("lfssim: decode snapshot: %w", err)
	}

	e := &Engine{
		store:      &Store{},
		payloadGen: payloadGenerators[DefaultPayloadPolicy],
		dumpLast:   1,
	}
	e.imap = newImap(e.store, false)
	for _, gb := range env.Blocks {
		e.store.Append(gb.toBlock())
	}
	e.imap.inodeMap = env.InodeMap
	e.imap.cr = env.CR

	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = seededRand(e.randSeed)
	}
	e.errs.clear()
	return e, nil
}
