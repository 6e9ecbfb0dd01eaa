package main

import (
	"github.com/KarpelesLab/lfssim"
	"github.com/spf13/viper"
)

// newEngine constructs an engine from the persistent flags bound into
// viper by root.go.
func newEngine() *lfssim.Engine {
	var opts []lfssim.Option
	if viper.GetBool("use-disk-cr") {
		opts = append(opts, lfssim.UseDiskCR(true))
	}
	if viper.GetBool("no-force-checkpoints") {
		opts = append(opts, lfssim.NoForceCheckpoints(true))
	}
	return lfssim.New(opts...)
}

// record is one parsed command from the external driver contract:
// {c|d|w|r, path [, offset, nblks]}.
type record struct {
	op     byte
	path   string
	offset int
	nblks  int
}

// apply replays one record against e and returns the operation's
// result code, matching the engine's own -1/0/n return convention.
func (r record) apply(e *lfssim.Engine) int {
	switch r.op {
	case 'c':
		return e.FileCreate(r.path)
	case 'd':
		return e.DirCreate(r.path)
	case 'w':
		return e.FileWrite(r.path, r.offset, r.nblks)
	case 'r':
		return e.FileDelete(r.path)
	default:
		return -1
	}
}
