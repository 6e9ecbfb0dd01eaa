package main

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	benchCount int
	benchSeed  int64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Generate and replay a random command workload",
	Long: `bench plays the role of the engine's random-command generator:
it builds a weighted-random sequence of create/write/mkdir/delete
commands, replays it, and reports average blocks appended per
operation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rng := rand.New(rand.NewSource(benchSeed))
		records := makeRandomCommands(rng, benchCount)

		sessionID := uuid.New()
		fmt.Printf("lfsctl: bench session %s generated %d commands\n", sessionID, len(records))

		e := newEngine()
		startLen := e.DiskLen()
		total := 0
		for _, rec := range records {
			before := e.DiskLen()
			rec.apply(e)
			total += e.DiskLen() - before
		}
		fmt.Printf("lfsctl: bench session %s finished, disk %d -> %d, avg blocks/op %.2f\n",
			sessionID, startLen, e.DiskLen(), float64(total)/float64(len(records)))
		return nil
	},
}

func init() {
	benchCmd.Flags().IntVar(&benchCount, "count", 60, "number of commands to generate")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "random seed for command generation")
}

// commandBucket is one weighted bucket in the random-command policy:
// create 0.0-0.3, write 0.3-0.7, mkdir 0.7-0.9, delete 0.9-1.0.
type commandBucket struct {
	op     byte
	lo, hi float64
}

var benchBuckets = []commandBucket{
	{op: 'c', lo: 0.0, hi: 0.3},
	{op: 'w', lo: 0.3, hi: 0.7},
	{op: 'd', lo: 0.7, hi: 0.9},
	{op: 'r', lo: 0.9, hi: 1.0},
}

// makeRandomCommands builds a weighted-random command sequence: it
// tracks the set of existing files/dirs so writes and deletes target
// something real, and creates land under a random existing directory.
func makeRandomCommands(rng *rand.Rand, n int) []record {
	var commands []record
	existingFiles := []string{}
	existingDirs := []string{"/"}

	for len(commands) < n {
		chance := rng.Float64()
		bucket := pickBucket(chance)

		switch bucket {
		case 'c':
			parent := pickRandom(rng, existingDirs)
			if parent == "" {
				continue
			}
			path := randomChildPath(rng, parent)
			commands = append(commands, record{op: 'c', path: path})
			existingFiles = append(existingFiles, path)
		case 'w':
			path := pickRandom(rng, existingFiles)
			if path == "" {
				continue
			}
			commands = append(commands, record{
				op:     'w',
				path:   path,
				offset: rng.Intn(InodePtrsForBench),
				nblks:  rng.Intn(InodePtrsForBench),
			})
		case 'd':
			parent := pickRandom(rng, existingDirs)
			if parent == "" {
				continue
			}
			path := randomChildPath(rng, parent)
			commands = append(commands, record{op: 'd', path: path})
			existingDirs = append(existingDirs, path)
		case 'r':
			if len(existingFiles) == 0 {
				continue
			}
			idx := rng.Intn(len(existingFiles))
			commands = append(commands, record{op: 'r', path: existingFiles[idx]})
			existingFiles = append(existingFiles[:idx], existingFiles[idx+1:]...)
		}
	}
	return commands
}

// InodePtrsForBench is the hardcoded range for generated write
// offset/size, independent of the engine's own InodePtrs constant so
// bench keeps generating some over-capacity writes on purpose, which
// exercises the engine's truncation path.
const InodePtrsForBench = 8

func pickBucket(chance float64) byte {
	for _, b := range benchBuckets {
		if chance >= b.lo && chance < b.hi {
			return b.op
		}
	}
	return benchBuckets[len(benchBuckets)-1].op
}

func pickRandom(rng *rand.Rand, list []string) string {
	if len(list) == 0 {
		return ""
	}
	return list[rng.Intn(len(list))]
}

func randomChildPath(rng *rand.Rand, parent string) string {
	l1 := byte('a' + rng.Intn(26))
	l2 := byte('a' + rng.Intn(26))
	n1 := rng.Intn(10)
	name := fmt.Sprintf("%c%c%d", l1, l2, n1)
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}
