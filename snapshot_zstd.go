//go:build zstd

package lfssim

import (
	"github.com/klauspost/compress/zstd"
)

func init() {
	RegisterSnapshotCodec("zstd", snapshotCodec{
		Compress: func(data []byte) ([]byte, error) {
			enc, err := zstd.NewWriter(nil)
			if err != nil {
				return nil, err
			}
			defer enc.Close()
			return enc.EncodeAll(data, nil), nil
		},
		Decompress: func(data []byte) ([]byte, error) {
			dec, err := zstd.NewReader(nil)
			if err != nil {
				return nil, err
			}
			defer dec.Close()
			return dec.DecodeAll(data, nil)
		},
	})
}
