package xlog

import (
	"math"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLogfmtInt64(t *testing.T) {
	cases := []struct {
		n int64
		s string
	}{
		{0, "0"},
		{10, "10"},
		{-10, "-10"},
		{99999, "99999"},
		{-99999, "-99999"},
		{100000, "100,000"},
		{-100000, "-100,000"},
		{1000000, "1,000,000"},
		{math.MaxInt64, "9,223,372,036,854,775,807"},
		{math.MinInt64, "-9,223,372,036,854,775,808"},
	}
	for _, c := range cases {
		assert.Equal(t, c.s, FormatLogfmtInt64(c.n))
	}
}

func TestFormatLogfmtUint64(t *testing.T) {
	cases := []struct {
		n uint64
		s string
	}{
		{0, "0"},
		{99999, "99999"},
		{100000, "100,000"},
		{math.MaxUint64, "18,446,744,073,709,551,615"},
	}
	for _, c := range cases {
		assert.Equal(t, c.s, FormatLogfmtUint64(c.n))
	}
}

func TestLvlFilterHandlerDropsBelowThreshold(t *testing.T) {
	var got []string
	h := LvlFilterHandler(LevelWarn, FuncHandler(func(r Record) error {
		got = append(got, r.Msg)
		return nil
	}))
	logger := New()
	logger.SetHandler(h)
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	assert.Equal(t, []string{"warn message", "error message"}, got)
}

func TestStreamHandlerWritesFormattedRecord(t *testing.T) {
	var b strings.Builder
	logger := New()
	logger.SetHandler(StreamHandler(&b, LogfmtFormat()))
	logger.Info("hello", "k", "v")

	out := b.String()
	assert.Contains(t, out, "msg=hello")
	assert.Contains(t, out, "k=v")
}

func TestPrepFileCountsExistingLines(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "xlog")
	require.NoError(t, err)
	name := f.Name()
	_, err = f.WriteString("line one\nline two\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	w, err := prepFile(name)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 2, w.count)
}

func TestPrepFileNewFileStartsAtZero(t *testing.T) {
	name := t.TempDir() + "/fresh.log"
	w, err := prepFile(name)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, 0, w.count)
}

func TestGroupThousands(t *testing.T) {
	assert.Equal(t, "100", groupThousands("100"))
	assert.Equal(t, "1,234", groupThousands("1234"))
	assert.Equal(t, "12,345,678", groupThousands("12345678"))
}
