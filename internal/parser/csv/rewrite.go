package csv

import (
	"bufio"
	"bytes"
	"io"
)

// streamingRewriter is an io.Reader that performs a streaming, rolling
// find/replace: it replaces all occurrences of pat with repl without buffering
// the entire stream. To match sequences that span chunk boundaries it retains
// the last len(pat)-1 bytes (carry) of each processed block and prepends them
// to the next block before replacement.
type streamingRewriter struct {
	br    *bufio.Reader
	pat   []byte
	repl  []byte
	carry []byte       // last len(pat)-1 bytes retained between reads
	buf   bytes.Buffer // pending output to satisfy Read
	tmp   []byte
	eof   bool
}

// newStreamingRewriter wraps r with a rewriter that replaces pat with repl.
func newStreamingRewriter(r io.Reader, pat, repl []byte) *streamingRewriter {
	return &streamingRewriter{
		br:    bufio.NewReaderSize(r, 64*1024),
		pat:   pat,
		repl:  repl,
		carry: make([]byte, 0, max(len(pat)-1, 0)),
		tmp:   make([]byte, 64*1024),
	}
}

// Read implements io.Reader. It fills p from the internal buffer; when empty,
// it reads the next chunk, performs the replacement and withholds the trailing
// len(pat)-1 bytes as carry. On EOF it flushes the remaining carry.
func (sr *streamingRewriter) Read(p []byte) (int, error) {
	for {
		if sr.buf.Len() > 0 {
			return sr.buf.Read(p)
		}
		if sr.eof {
			return 0, io.EOF
		}

		n, rerr := sr.br.Read(sr.tmp)
		if n > 0 {
			block := sr.tmp[:n]
			if len(sr.carry) > 0 {
				joined := make([]byte, 0, len(sr.carry)+len(block))
				joined = append(joined, sr.carry...)
				joined = append(joined, block...)
				block = joined
			}
			if len(sr.pat) > 0 && !bytes.Equal(sr.pat, sr.repl) {
				block = bytes.ReplaceAll(block, sr.pat, sr.repl)
			}

			k := max(len(sr.pat)-1, 0)
			if k > 0 && len(block) > k {
				sr.buf.Write(block[:len(block)-k])
				sr.carry = append(sr.carry[:0], block[len(block)-k:]...)
			} else if k > 0 {
				sr.carry = append(sr.carry[:0], block...)
			} else {
				sr.buf.Write(block)
			}
		}

		switch {
		case rerr == io.EOF:
			if len(sr.carry) > 0 {
				sr.buf.Write(sr.carry)
				sr.carry = sr.carry[:0]
			}
			sr.eof = true
		case rerr != nil:
			return 0, rerr
		}
	}
}

// withReplacements chains one rewriter per replacement. Close is forwarded to
// the original source.
func withReplacements(src io.ReadCloser, reps []Replacement) io.ReadCloser {
	if len(reps) == 0 {
		return src
	}
	var r io.Reader = src
	for _, rep := range reps {
		r = newStreamingRewriter(r, []byte(rep.From), []byte(rep.To))
	}
	return struct {
		io.Reader
		io.Closer
	}{r, src}
}
