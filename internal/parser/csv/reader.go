// Package csv reads card exports into card.Raw rows.
//
// The reader streams: rows are sent on a channel as they are parsed and the
// whole file is never buffered. The header row is required; it is trimmed,
// stripped of a UTF-8 BOM and renamed through the header map. Empty cells are
// treated as absent fields.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"cardetl/internal/card"
)

// ErrMissingColumns is returned when the header lacks required columns.
var ErrMissingColumns = errors.New("csv: missing required columns")

// HeaderError lists the required columns the header did not provide.
type HeaderError struct {
	Missing []string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v: %s", ErrMissingColumns, strings.Join(e.Missing, ", "))
}

func (e *HeaderError) Unwrap() error { return ErrMissingColumns }

// defaultLogEvery is the reader progress heartbeat interval.
const defaultLogEvery = 50_000

// StreamRaw parses src and sends one card.Raw per data row on out. Line is
// the 1-based line of the row's first byte, so rows with multi-line quoted
// text keep accurate numbers.
//
// Row-level problems (bad quoting, wrong field count) are soft: they are
// reported through onErr and the row is skipped. Header problems and context
// cancellation are returned. src is closed before StreamRaw returns; the
// caller closes out.
func StreamRaw(
	ctx context.Context,
	src io.ReadCloser,
	opt Options,
	out chan<- card.Raw,
	onErr func(line int, err error),
) error {
	r := withReplacements(src, opt.Replace)
	defer r.Close()

	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.FieldsPerRecord = -1 // width is checked against the header below
	cr.ReuseRecord = true

	hdr, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("read header: empty input")
		}
		return fmt.Errorf("read header: %w", err)
	}
	headers := normalizeHeaders(hdr, opt.HeaderMap)
	if err := checkRequired(headers, opt.RequiredHeaders); err != nil {
		return err
	}

	logEvery := opt.LogEvery
	if logEvery == 0 {
		logEvery = defaultLogEvery
	}
	var nulls map[string]struct{}
	if len(opt.NullValues) > 0 {
		nulls = make(map[string]struct{}, len(opt.NullValues))
		for _, n := range opt.NullValues {
			nulls[n] = struct{}{}
		}
	}

	rowsSeen := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		line, _ := cr.FieldPos(0)
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			if onErr != nil {
				onErr(line, fmt.Errorf("csv read: %w", err))
			}
			continue
		}
		if len(rec) != len(headers) {
			if onErr != nil {
				onErr(line, fmt.Errorf("incorrect number of fields: expected %d, got %d", len(headers), len(rec)))
			}
			continue
		}

		raw := card.Raw{Line: line, Fields: make(map[string]string, len(headers))}
		for i, v := range rec {
			if opt.TrimSpace && hasEdgeSpace(v) {
				v = strings.TrimSpace(v)
			}
			if v == "" || headers[i] == "" {
				continue
			}
			if _, null := nulls[v]; null {
				continue
			}
			raw.Fields[headers[i]] = v
		}

		select {
		case out <- raw:
			rowsSeen++
			if logEvery > 0 && rowsSeen%logEvery == 0 {
				log.Printf("reader: line=%d emitted=%d", line, rowsSeen)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// ReadAll collects every row of src. It is the batch form of StreamRaw used
// by the pipeline, which needs the whole batch before sorting.
func ReadAll(ctx context.Context, src io.ReadCloser, opt Options, onErr func(line int, err error)) ([]card.Raw, error) {
	ch := make(chan card.Raw, 1024)
	errc := make(chan error, 1)
	go func() {
		defer close(ch)
		errc <- StreamRaw(ctx, src, opt, ch, onErr)
	}()

	var rows []card.Raw
	for r := range ch {
		rows = append(rows, r)
	}
	if err := <-errc; err != nil {
		return nil, err
	}
	return rows, nil
}

// normalizeHeaders trims, strips the BOM and applies the header map.
func normalizeHeaders(h []string, hm map[string]string) []string {
	res := make([]string, len(h))
	copy(res, h)
	StripHeaderBOM(res)
	for i, col := range res {
		c := strings.TrimSpace(col)
		if m, ok := hm[c]; ok && m != "" {
			c = m
		}
		res[i] = c
	}
	return res
}

func checkRequired(headers, required []string) error {
	if len(required) == 0 {
		return nil
	}
	have := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		have[h] = struct{}{}
	}
	var missing []string
	for _, c := range required {
		if _, ok := have[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &HeaderError{Missing: missing}
	}
	return nil
}

// hasEdgeSpace reports whether s starts or ends with ASCII white space, so
// the common clean cell skips TrimSpace.
func hasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	return isSpace(s[0]) || isSpace(s[len(s)-1])
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
