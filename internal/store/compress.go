// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"compress/zlib"
	"encoding/json"
	"fmt"
	"io"
)

// A query can return up to 5000 titles and an experiment runs hundreds
// of queries, so title lists are stored zlib-compressed as a JSON array.

func compressTitles(titles []string) ([]byte, error) {
	data, err := json.Marshal(titles)
	if err != nil {
		return nil, fmt.Errorf("encoding titles: %w", err)
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("compressing titles: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compressing titles: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressTitles(blob []byte) ([]string, error) {
	zr, err := zlib.NewReader(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("decompressing titles: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("decompressing titles: %w", err)
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, fmt.Errorf("decoding titles: %w", err)
	}
	return titles, nil
}
