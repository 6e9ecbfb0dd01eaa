package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <commands-file>",
	Short: "Replay a file of command records against a fresh engine",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := parseRecordFile(args[0])
		if err != nil {
			return err
		}

		sessionID := uuid.New()
		fmt.Printf("lfsctl: session %s replaying %d commands\n", sessionID, len(records))

		e := newEngine()
		for _, rec := range records {
			res := rec.apply(e)
			if res < 0 {
				fmt.Printf("  %s -> failed: %s\n", rec.describe(), strings.Join(e.Errors(), "; "))
				continue
			}
			fmt.Printf("  %s -> %d\n", rec.describe(), res)
		}
		fmt.Printf("lfsctl: session %s finished, disk length %d\n", sessionID, e.DiskLen())
		return nil
	},
}

func (r record) describe() string {
	switch r.op {
	case 'c':
		return fmt.Sprintf("create file %s", r.path)
	case 'd':
		return fmt.Sprintf("create dir  %s", r.path)
	case 'w':
		return fmt.Sprintf("write file  %s offset=%d size=%d", r.path, r.offset, r.nblks)
	case 'r':
		return fmt.Sprintf("delete file %s", r.path)
	default:
		return fmt.Sprintf("unknown command %q", r.op)
	}
}

// parseRecordFile reads one command record per line: c,/path | d,/path
// | w,/path,offset,nblks | r,/path. Blank lines are skipped.
func parseRecordFile(path string) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("lfsctl: open commands file: %w", err)
	}
	defer f.Close()

	var records []record
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseRecordLine(line)
		if err != nil {
			return nil, fmt.Errorf("lfsctl: line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lfsctl: read commands file: %w", err)
	}
	return records, nil
}

func parseRecordLine(line string) (record, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return record{}, fmt.Errorf("malformed command %q", line)
	}

	rec := record{op: fields[0][0], path: fields[1]}
	switch rec.op {
	case 'c', 'd', 'r':
		return rec, nil
	case 'w':
		if len(fields) != 4 {
			return record{}, fmt.Errorf("write command needs offset and size: %q", line)
		}
		offset, err := strconv.Atoi(fields[2])
		if err != nil {
			return record{}, fmt.Errorf("bad offset in %q: %w", line, err)
		}
		nblks, err := strconv.Atoi(fields[3])
		if err != nil {
			return record{}, fmt.Errorf("bad size in %q: %w", line, err)
		}
		rec.offset, rec.nblks = offset, nblks
		return rec, nil
	default:
		return record{}, fmt.Errorf("unrecognized command %q", line)
	}
}
