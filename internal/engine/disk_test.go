package engine

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T, codec Codec) (*MemoryStore, string) {
	t.Helper()
	mem := newStore(t, sampleRows()...)
	dir := filepath.Join(t.TempDir(), "columns")
	require.NoError(t, WriteColumns(mem, dir, codec))
	return mem, dir
}

func TestWriteColumnsPlainLayout(t *testing.T) {
	_, dir := writeSample(t, CodecPlain)

	data, err := os.ReadFile(filepath.Join(dir, "temperature.txt"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, len(sampleRows()))
	assert.Equal(t, "30", lines[0])
	assert.Equal(t, "NA", lines[4])
	assert.Equal(t, "27.5", lines[5])

	for _, col := range Columns {
		assert.FileExists(t, ColumnPath(dir, col, CodecPlain))
	}
}

func TestDiskStoreMatchesMemory(t *testing.T) {
	for _, codec := range Codecs {
		t.Run(string(codec), func(t *testing.T) {
			mem, dir := writeSample(t, codec)

			disk, err := OpenDisk(dir)
			require.NoError(t, err)
			assert.Equal(t, codec, disk.Codec())
			assert.Equal(t, dir, disk.Dir())

			n, err := disk.Len()
			require.NoError(t, err)
			assert.Equal(t, len(sampleRows()), n)

			for _, col := range []Column{ColumnTimestamp, ColumnStation} {
				want, _ := mem.Strings(col)
				got, err := disk.Strings(col)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				for pos := range want {
					s, err := disk.StringAt(col, pos)
					require.NoError(t, err)
					assert.Equal(t, want[pos], s)
				}
			}
			for _, col := range []Column{ColumnTemperature, ColumnHumidity} {
				want, _ := mem.Readings(col)
				got, err := disk.Readings(col)
				require.NoError(t, err)
				assert.Equal(t, want, got)

				for pos := range want {
					r, err := disk.ReadingAt(col, pos)
					require.NoError(t, err)
					assert.Equal(t, want[pos], r)
				}
			}
		})
	}
}

func TestDiskStoreLineIndex(t *testing.T) {
	mem, dir := writeSample(t, CodecPlain)

	disk, err := OpenDisk(dir, WithLineIndex())
	require.NoError(t, err)

	want, _ := mem.Strings(ColumnStation)
	for pos := len(want) - 1; pos >= 0; pos-- {
		s, err := disk.StringAt(ColumnStation, pos)
		require.NoError(t, err)
		assert.Equal(t, want[pos], s)
	}
	r, err := disk.ReadingAt(ColumnTemperature, 4)
	require.NoError(t, err)
	assert.False(t, r.Valid)

	_, err = disk.StringAt(ColumnStation, len(want))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDiskStoreLineIndexNeedsPlainCodec(t *testing.T) {
	_, dir := writeSample(t, CodecZstd)

	_, err := OpenDisk(dir, WithLineIndex())
	assert.Error(t, err)
}

func TestDiskStoreOutOfRange(t *testing.T) {
	_, dir := writeSample(t, CodecPlain)
	disk, err := OpenDisk(dir)
	require.NoError(t, err)

	_, err = disk.StringAt(ColumnTimestamp, len(sampleRows()))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = disk.ReadingAt(ColumnHumidity, -1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestDiskStoreUnknownColumn(t *testing.T) {
	_, dir := writeSample(t, CodecPlain)
	disk, err := OpenDisk(dir)
	require.NoError(t, err)

	_, err = disk.Readings(ColumnTimestamp)
	assert.ErrorIs(t, err, ErrUnknownColumn)
	_, err = disk.StringAt(ColumnHumidity, 0)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestOpenDiskColumnMismatch(t *testing.T) {
	_, dir := writeSample(t, CodecPlain)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "humidity.txt"), []byte("80\n70\n"), 0o644))

	_, err := OpenDisk(dir)
	assert.ErrorIs(t, err, ErrColumnMismatch)
}

func TestOpenDiskMissingDirectory(t *testing.T) {
	_, err := OpenDisk(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestDiskStoreUnavailableAfterOpen(t *testing.T) {
	_, dir := writeSample(t, CodecPlain)
	disk, err := OpenDisk(dir)
	require.NoError(t, err)

	require.NoError(t, os.Remove(ColumnPath(dir, ColumnStation, CodecPlain)))

	_, err = disk.StringAt(ColumnStation, 0)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	_, err = RunQuery(disk, 2004, "Paya Lebar")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestWriteColumnsRemovesOtherCodecs(t *testing.T) {
	mem, dir := writeSample(t, CodecPlain)
	require.NoError(t, WriteColumns(mem, dir, CodecLZ4))

	for _, col := range Columns {
		assert.NoFileExists(t, ColumnPath(dir, col, CodecPlain))
		assert.FileExists(t, ColumnPath(dir, col, CodecLZ4))
	}

	disk, err := OpenDisk(dir)
	require.NoError(t, err)
	assert.Equal(t, CodecLZ4, disk.Codec())
}

func TestParseCodec(t *testing.T) {
	for in, want := range map[string]Codec{"": CodecPlain, "plain": CodecPlain, "ZSTD": CodecZstd, " lz4 ": CodecLZ4} {
		got, err := ParseCodec(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseCodec("gzip")
	assert.Error(t, err)
}

func TestDiskStoreEscapesLineBreaks(t *testing.T) {
	input := "id,timestamp,station,temperature,humidity\n" +
		"1,2004-01-01 00:00,\"Paya\nLebar\",30,80\n" +
		"2,2004-01-02 00:00,\"Changi\r\",31,81\n" +
		"3,2004-01-03 00:00,C:\\new\\rain\\,32,82\n"
	mem, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	for _, tc := range []struct {
		name  string
		codec Codec
		opts  []DiskOption
	}{
		{"plain", CodecPlain, nil},
		{"plain indexed", CodecPlain, []DiskOption{WithLineIndex()}},
		{"zstd", CodecZstd, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, WriteColumns(mem, dir, tc.codec))
			disk, err := OpenDisk(dir, tc.opts...)
			require.NoError(t, err)

			n, err := disk.Len()
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			want, _ := mem.Strings(ColumnStation)
			assert.Equal(t, []string{"Paya\nLebar", "Changi\r", `C:\new\rain\`}, want)
			got, err := disk.Strings(ColumnStation)
			require.NoError(t, err)
			assert.Equal(t, want, got)
			for pos := range want {
				s, err := disk.StringAt(ColumnStation, pos)
				require.NoError(t, err)
				assert.Equal(t, want[pos], s)
			}

			for _, station := range want {
				memReport, err := RunQuery(mem, 2004, station)
				require.NoError(t, err)
				diskReport, err := RunQuery(disk, 2004, station)
				require.NoError(t, err)
				assert.Equal(t, memReport, diskReport)
				assert.Len(t, diskReport.Rows(), 4, station)
			}
		})
	}
}
