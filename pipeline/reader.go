// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package pipeline implements the parallel record ingestion pipeline: a
// block reader splits the input stream into line-aligned byte blocks, a
// worker pool parses blocks concurrently, and a reorder stage restores
// input order before records reach the rest of the system.
package pipeline

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// DefaultBlockSize is the target size of a block read, before the reader
// extends it to the next newline.
const DefaultBlockSize = 32 * 1024

// BlockReader reads a delimited-text stream into successive line-aligned
// blocks. It owns its underlying reader exclusively and is not safe for
// concurrent use — it is meant to run on a single dedicated goroutine, per
// spec.
type BlockReader struct {
	r         *bufio.Reader
	blockSize int
	nextID    uint64
	headers   []string
}

// NewBlockReader consumes the header row from r and returns a BlockReader
// ready to emit numbered blocks starting at id 1. The header row's fields
// are trimmed of surrounding whitespace and available through Headers.
func NewBlockReader(r io.Reader, blockSize int) (*BlockReader, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	br := bufio.NewReader(r)

	headerLine, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading header row: %w", err)
	}
	headers := splitTrim(headerLine)

	return &BlockReader{
		r:         br,
		blockSize: blockSize,
		nextID:    1,
		headers:   headers,
	}, nil
}

// Headers returns the trimmed header fields consumed from the first line.
func (b *BlockReader) Headers() []string { return b.headers }

// NextBlock reads and returns the next line-aligned block. ok is false once
// the stream is exhausted; err is non-nil only on a genuine I/O failure,
// never on ordinary EOF.
func (b *BlockReader) NextBlock() (id uint64, data []byte, ok bool, err error) {
	var buf bytes.Buffer

	chunk := make([]byte, b.blockSize)
	n, readErr := io.ReadFull(b.r, chunk)
	if n > 0 {
		buf.Write(chunk[:n])
	}
	if readErr != nil && readErr != io.ErrUnexpectedEOF && readErr != io.EOF {
		return 0, nil, false, fmt.Errorf("reading block: %w", readErr)
	}
	if n == 0 && (readErr == io.EOF || readErr == io.ErrUnexpectedEOF) {
		return 0, nil, false, nil
	}

	// Extend the block up to and including the next newline so it always
	// ends on a record boundary, unless we already hit EOF filling it.
	if readErr == nil {
		rest, err := b.r.ReadString('\n')
		buf.WriteString(rest)
		if err != nil && err != io.EOF {
			return 0, nil, false, fmt.Errorf("extending block to newline: %w", err)
		}
	}

	id = b.nextID
	b.nextID++
	return id, buf.Bytes(), true, nil
}

func splitTrim(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
