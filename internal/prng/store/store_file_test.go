package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"primelab/internal/prng/models"
	dErrors "primelab/pkg/domain-errors"
	"primelab/pkg/platform/sentinel"
)

type FileStoreSuite struct {
	suite.Suite
	store *FileStore
	ctx   context.Context
}

func TestFileStoreSuite(t *testing.T) {
	suite.Run(t, new(FileStoreSuite))
}

func (s *FileStoreSuite) SetupTest() {
	s.store = NewFileStore(s.T().TempDir() + "/results")
	s.ctx = context.Background()
}

func (s *FileStoreSuite) TestNumbersRoundTrip() {
	w, err := s.store.CreateNumbers(s.ctx, "lcg", 40)
	s.Require().NoError(err)
	_, err = fmt.Fprint(w, "1\n1099511627775\n\n42\n")
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	values, err := s.store.LoadNumbers(s.ctx, "lcg", 40)
	s.Require().NoError(err)
	s.Require().Len(values, 3)
	s.Equal("1099511627775", values[1].String())
}

func (s *FileStoreSuite) TestCreateNumbersTruncates() {
	for _, content := range []string{"1\n2\n3\n", "9\n"} {
		w, err := s.store.CreateNumbers(s.ctx, "xorshift", 56)
		s.Require().NoError(err)
		_, err = fmt.Fprint(w, content)
		s.Require().NoError(err)
		s.Require().NoError(w.Close())
	}
	values, err := s.store.LoadNumbers(s.ctx, "xorshift", 56)
	s.Require().NoError(err)
	s.Len(values, 1)
}

func (s *FileStoreSuite) TestDiscardNumbers() {
	ctx := context.Background()
	w, err := s.store.CreateNumbers(ctx, "lcg", 40)
	s.Require().NoError(err)
	_, err = w.Write([]byte("1\n2\n"))
	s.Require().NoError(err)
	s.Require().NoError(w.Close())

	s.Require().NoError(s.store.DiscardNumbers(ctx, "lcg", 40))
	_, err = s.store.LoadNumbers(ctx, "lcg", 40)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.NoError(s.store.DiscardNumbers(ctx, "lcg", 40), "discarding twice is fine")
}

func (s *FileStoreSuite) TestLoadNumbersErrors() {
	s.Run("missing file", func() {
		_, err := s.store.LoadNumbers(s.ctx, "lcg", 4096)
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})

	s.Run("malformed line", func() {
		w, err := s.store.CreateNumbers(s.ctx, "lcg", 80)
		s.Require().NoError(err)
		_, _ = fmt.Fprint(w, "12\nabc\n")
		s.Require().NoError(w.Close())

		_, err = s.store.LoadNumbers(s.ctx, "lcg", 80)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
		s.Contains(err.Error(), ":2:")
	})
}

func (s *FileStoreSuite) TestTimingRoundTrip() {
	report := models.NewTimingReport("xorshift", 128, 2000, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond})
	s.Require().NoError(s.store.SaveTiming(s.ctx, report))

	raw, err := os.ReadFile(s.store.TimingPath("xorshift", 128))
	s.Require().NoError(err)
	s.Equal("Algorithm: xorshift\nBits: 128\nTotal Time: 0.500000000000000 sec\n"+
		"Average Batch Time: 0.250000000000000 sec\nSpeed: 4000 numbers/sec\n", string(raw))

	back, err := s.store.LoadTiming(s.ctx, "xorshift", 128)
	s.Require().NoError(err)
	s.Equal("xorshift", back.Algorithm)
	s.Equal(128, back.Bits)
	s.Equal(500*time.Millisecond, back.TotalTime)
	s.Equal(250*time.Millisecond, back.AverageBatchTime)
	s.Equal(4000.0, back.Speed)
	s.Equal(2000, back.Iterations)
}

func (s *FileStoreSuite) TestParseTimingAcceptsThousandsSeparators() {
	report, err := ParseTiming(strings.NewReader("Algorithm: lcg\nBits: 40\nTotal Time: 1.5 sec\nSpeed: 1,234,567 numbers/sec\n"))
	s.Require().NoError(err)
	s.Equal(1234567.0, report.Speed)
	s.Equal(1500*time.Millisecond, report.TotalTime)
}

func (s *FileStoreSuite) TestParseTimingRejectsBadNumbers() {
	_, err := ParseTiming(strings.NewReader("Bits: forty\n"))
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
