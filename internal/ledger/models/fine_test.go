package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type FineSuite struct {
	suite.Suite
	dueAt time.Time
}

func TestFineSuite(t *testing.T) {
	suite.Run(t, new(FineSuite))
}

func (s *FineSuite) SetupTest() {
	s.dueAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func (s *FineSuite) TestOverdueDays() {
	s.Run("zero before the due date", func() {
		s.EqualValues(0, OverdueDays(s.dueAt, s.dueAt.Add(-time.Hour)))
	})

	s.Run("zero exactly at the due date", func() {
		s.EqualValues(0, OverdueDays(s.dueAt, s.dueAt))
	})

	s.Run("partial days truncate toward zero", func() {
		s.EqualValues(0, OverdueDays(s.dueAt, s.dueAt.Add(23*time.Hour)))
		s.EqualValues(1, OverdueDays(s.dueAt, s.dueAt.Add(47*time.Hour)))
	})

	s.Run("counts whole days past due", func() {
		s.EqualValues(5, OverdueDays(s.dueAt, s.dueAt.Add(5*24*time.Hour)))
	})
}

func (s *FineSuite) TestFineCents() {
	s.Run("no fine within the grace of a partial day", func() {
		s.EqualValues(0, FineCents(s.dueAt, s.dueAt.Add(12*time.Hour)))
	})

	s.Run("accrues fifty cents per day", func() {
		s.EqualValues(250, FineCents(s.dueAt, s.dueAt.Add(5*24*time.Hour)))
	})

	s.Run("caps at twenty five dollars", func() {
		s.EqualValues(2500, FineCents(s.dueAt, s.dueAt.Add(60*24*time.Hour)))
	})

	s.Run("cap is hit exactly at fifty days", func() {
		s.EqualValues(2500, FineCents(s.dueAt, s.dueAt.Add(50*24*time.Hour)))
		s.EqualValues(2450, FineCents(s.dueAt, s.dueAt.Add(49*24*time.Hour)))
	})

	s.Run("repeated assessment is stable", func() {
		ref := s.dueAt.Add(7 * 24 * time.Hour)
		first := FineCents(s.dueAt, ref)
		second := FineCents(s.dueAt, ref)
		s.Equal(first, second)
	})
}

func (s *FineSuite) TestFormatCents() {
	s.Equal("0.00", FormatCents(0))
	s.Equal("0.50", FormatCents(50))
	s.Equal("2.50", FormatCents(250))
	s.Equal("25.00", FormatCents(2500))
	s.Equal("1.05", FormatCents(105))
}
