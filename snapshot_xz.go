//go:build xz

package lfssim

import (
	"bytes"
	"io"

	"github.com/ulikunitz/xz"
)

func init() {
	RegisterSnapshotCodec("xz", snapshotCodec{
		Compress: func(data []byte) ([]byte, error) {
			var out bytes.Buffer
			w, err := xz.NewWriter(&out)
			if err != nil {
				return nil, err
			}
			if _, err := w.Write(data); err != nil {
				w.Close()
				return nil, err
			}
			if err := w.Close(); err != nil {
				return nil, err
			}
			return out.Bytes(), nil
		},
		Decompress: func(data []byte) ([]byte, error) {
			r, err := xz.NewReader(bytes.NewReader(data))
			if err != nil {
				return nil, err
			}
			return io.ReadAll(r)
		},
	})
}
