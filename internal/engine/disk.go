package engine

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const lineBufferSize = 64 * 1024

// ColumnPath returns the file holding col under dir for the given codec,
// e.g. "columns/temperature.txt.zst".
func ColumnPath(dir string, col Column, codec Codec) string {
	return filepath.Join(dir, col.String()+".txt"+codec.extension())
}

// --- 1. WRITING ---

// WriteColumns persists every column of store under dir, one value per line
// in row order. Missing readings are written as "NA"; backslashes and line
// terminators inside values are escaped as \\, \n and \r. Files of other codecs
// for the same column are removed so that detection stays unambiguous.
func WriteColumns(store ColumnStore, dir string, codec Codec) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create column directory: %w", err)
	}

	for _, col := range Columns {
		path := ColumnPath(dir, col, codec)

		var err error
		if col.Numeric() {
			var values []Reading
			if values, err = store.Readings(col); err == nil {
				err = writeColumn(path, codec, len(values), func(i int) string { return values[i].String() })
			}
		} else {
			var values []string
			if values, err = store.Strings(col); err == nil {
				err = writeColumn(path, codec, len(values), func(i int) string { return values[i] })
			}
		}
		if err != nil {
			return fmt.Errorf("failed to write %s column: %w", col, err)
		}

		for _, other := range Codecs {
			if other == codec {
				continue
			}
			stale := ColumnPath(dir, col, other)
			if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to remove stale column file %s: %w", stale, err)
			}
		}
	}
	return nil
}

// writeColumn writes to a temporary file and renames it into place.
func writeColumn(path string, codec Codec, n int, value func(i int) string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encodeLines(f, codec, n, value); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func encodeLines(w io.Writer, codec Codec, n int, value func(i int) string) error {
	enc, err := codec.newWriter(w)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, lineBufferSize)
	for i := 0; i < n; i++ {
		if _, err := bw.WriteString(escapeLine(value(i))); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

// --- 2. READING ---

// DiskStore reads columns from files. It keeps no column data in memory:
// full-column reads stream the file, and single-value reads rescan it up to
// the target line unless a line index was built at open.
type DiskStore struct {
	dir     string
	codec   Codec
	rows    int
	offsets map[Column][]int64
}

type diskOptions struct {
	codec     Codec
	lineIndex bool
}

// DiskOption configures OpenDisk.
type DiskOption func(*diskOptions)

// WithCodec fixes the codec instead of detecting it from the files present.
func WithCodec(c Codec) DiskOption {
	return func(o *diskOptions) { o.codec = c }
}

// WithLineIndex records the byte offset of every line at open so that
// single-value reads seek instead of rescanning. Plain codec only.
func WithLineIndex() DiskOption {
	return func(o *diskOptions) { o.lineIndex = true }
}

// OpenDisk opens the column files under dir and checks that all four columns
// hold the same number of rows.
func OpenDisk(dir string, opts ...DiskOption) (*DiskStore, error) {
	var o diskOptions
	for _, opt := range opts {
		opt(&o)
	}

	codec := o.codec
	if codec == "" {
		var err error
		if codec, err = detectCodec(dir); err != nil {
			return nil, err
		}
	}
	if o.lineIndex && codec != CodecPlain {
		return nil, fmt.Errorf("line index requires the plain codec, %s uses %s", dir, codec)
	}

	d := &DiskStore{dir: dir, codec: codec, rows: -1}
	if o.lineIndex {
		d.offsets = make(map[Column][]int64, len(Columns))
	}

	for _, col := range Columns {
		n := 0
		var offsets []int64
		err := d.eachLine(col, func(_ int, offset int64, _ string) bool {
			n++
			if o.lineIndex {
				offsets = append(offsets, offset)
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		if d.rows >= 0 && n != d.rows {
			return nil, fmt.Errorf("%w: %s has %d rows, expected %d", ErrColumnMismatch, col, n, d.rows)
		}
		d.rows = n
		if o.lineIndex {
			d.offsets[col] = offsets
		}
	}
	return d, nil
}

func detectCodec(dir string) (Codec, error) {
	for _, c := range Codecs {
		if _, err := os.Stat(ColumnPath(dir, ColumnTimestamp, c)); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: no timestamp column in %s: %w", ErrStoreUnavailable, dir, fs.ErrNotExist)
}

// Dir returns the column directory.
func (d *DiskStore) Dir() string { return d.dir }

// Codec returns the codec of the column files.
func (d *DiskStore) Codec() Codec { return d.codec }

func (d *DiskStore) Len() (int, error) {
	return d.rows, nil
}

func (d *DiskStore) Strings(col Column) ([]string, error) {
	if !col.textual() {
		return nil, fmt.Errorf("strings of %s: %w", col, ErrUnknownColumn)
	}
	values := make([]string, 0, d.rows)
	err := d.eachLine(col, func(_ int, _ int64, line string) bool {
		values = append(values, line)
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(values) != d.rows {
		return nil, fmt.Errorf("%w: %s has %d rows, expected %d", ErrColumnMismatch, col, len(values), d.rows)
	}
	return values, nil
}

func (d *DiskStore) Readings(col Column) ([]Reading, error) {
	if !col.Numeric() {
		return nil, fmt.Errorf("readings of %s: %w", col, ErrUnknownColumn)
	}
	values := make([]Reading, 0, d.rows)
	err := d.eachLine(col, func(_ int, _ int64, line string) bool {
		values = append(values, ParseReading(line))
		return true
	})
	if err != nil {
		return nil, err
	}
	if len(values) != d.rows {
		return nil, fmt.Errorf("%w: %s has %d rows, expected %d", ErrColumnMismatch, col, len(values), d.rows)
	}
	return values, nil
}

func (d *DiskStore) StringAt(col Column, pos int) (string, error) {
	if !col.textual() {
		return "", fmt.Errorf("string of %s: %w", col, ErrUnknownColumn)
	}
	return d.lineAt(col, pos)
}

func (d *DiskStore) ReadingAt(col Column, pos int) (Reading, error) {
	if !col.Numeric() {
		return Missing, fmt.Errorf("reading of %s: %w", col, ErrUnknownColumn)
	}
	line, err := d.lineAt(col, pos)
	if err != nil {
		return Missing, err
	}
	return ParseReading(line), nil
}

func (d *DiskStore) lineAt(col Column, pos int) (string, error) {
	if err := checkPos(col, pos, d.rows); err != nil {
		return "", err
	}
	if offsets, ok := d.offsets[col]; ok {
		return d.seekLine(col, offsets[pos])
	}

	var value string
	found := false
	err := d.eachLine(col, func(i int, _ int64, line string) bool {
		if i == pos {
			value, found = line, true
			return false
		}
		return true
	})
	if err != nil {
		return "", err
	}
	if !found {
		// The file shrank after open.
		return "", &OutOfRangeError{Column: col, Pos: pos, Len: d.rows}
	}
	return value, nil
}

func (d *DiskStore) seekLine(col Column, offset int64) (string, error) {
	path := ColumnPath(d.dir, col, d.codec)
	f, err := os.Open(path)
	if err != nil {
		return "", d.unavailable(col, err)
	}
	defer f.Close()

	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return "", d.unavailable(col, err)
	}
	raw, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && raw != "") {
		return "", d.unavailable(col, err)
	}
	return unescapeLine(trimEOL(raw)), nil
}

// eachLine streams col in row order, calling fn with the position, the byte
// offset of the line in the decoded stream and the line without its
// terminator. It stops early when fn returns false.
func (d *DiskStore) eachLine(col Column, fn func(pos int, offset int64, line string) bool) error {
	path := ColumnPath(d.dir, col, d.codec)
	f, err := os.Open(path)
	if err != nil {
		return d.unavailable(col, err)
	}
	defer f.Close()

	dec, err := d.codec.newReader(f)
	if err != nil {
		return d.unavailable(col, err)
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, lineBufferSize)
	var offset int64
	for pos := 0; ; pos++ {
		raw, err := br.ReadString('\n')
		if raw != "" {
			if !fn(pos, offset, trimEOL(raw)) {
				return nil
			}
			offset += int64(len(raw))
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return d.unavailable(col, err)
		}
	}
}

func (d *DiskStore) unavailable(col Column, err error) error {
	return fmt.Errorf("%w: %s column: %w", ErrStoreUnavailable, col, err)
}

// Values are stored one per line, so line terminators inside a value are
// escaped along with the escape character itself.
var (
	lineEscaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	lineUnescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

func escapeLine(s string) string {
	if !strings.ContainsAny(s, "\\\n\r") {
		return s
	}
	return lineEscaper.Replace(s)
}

func unescapeLine(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	return lineUnescaper.Replace(s)
}

func trimEOL(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
