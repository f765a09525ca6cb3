package scoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ServiceSuite struct {
	suite.Suite
	service *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.service = New()
}

// Known examples

func (s *ServiceSuite) TestScoreExamples() {
	tests := []struct {
		name      string
		secret    string
		guess     string
		digits    int
		positions int
	}{
		{"exact match", "5678", "5678", 4, 4},
		{"no overlap", "0000", "1111", 0, 0},
		{"repeated guess digit is capped", "1123", "1111", 2, 1},
		{"repeated secret digit is capped", "1111", "1123", 2, 1},
		{"all digits wrong place", "1234", "4321", 4, 0},
		{"partial", "1234", "1243", 4, 2},
		{"single position", "1234", "1999", 1, 1},
		{"digit present once", "1234", "5551", 1, 0},
		{"leading zeros", "0012", "0120", 4, 1},
		{"zero against nonzero", "0012", "0999", 1, 1},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			result := s.service.Score(tt.secret, tt.guess)
			s.Equal(tt.digits, result.CorrectDigits)
			s.Equal(tt.positions, result.CorrectPositions)
		})
	}
}

func (s *ServiceSuite) TestExactMatchIsWin() {
	s.True(s.service.Score("5678", "5678").IsWin())
	s.False(s.service.Score("5678", "5687").IsWin())
}

// Properties

func (s *ServiceSuite) TestBoundsHoldForAllGuessesAgainstSampleSecrets() {
	secrets := []string{"0000", "1123", "1234", "9090", "5678", "0001"}
	for _, secret := range secrets {
		for n := 0; n < 10000; n++ {
			guess := fmt.Sprintf("%04d", n)
			result := s.service.Score(secret, guess)
			s.Require().GreaterOrEqual(result.CorrectPositions, 0, "%s vs %s", secret, guess)
			s.Require().LessOrEqual(result.CorrectPositions, result.CorrectDigits, "%s vs %s", secret, guess)
			s.Require().LessOrEqual(result.CorrectDigits, 4, "%s vs %s", secret, guess)
			s.Require().Equal(secret == guess, result.IsWin(), "%s vs %s", secret, guess)
		}
	}
}

func (s *ServiceSuite) TestScoreIsSymmetric() {
	// Every pair drawn from digits 0-3 covers all repeat patterns
	var numbers []string
	for n := 0; n < 10000; n++ {
		candidate := fmt.Sprintf("%04d", n)
		if isFromDigits(candidate, "0123") {
			numbers = append(numbers, candidate)
		}
	}
	s.Require().Len(numbers, 256)

	for _, a := range numbers {
		for _, b := range numbers {
			ab := s.service.Score(a, b)
			ba := s.service.Score(b, a)
			s.Require().Equal(ab.CorrectDigits, ba.CorrectDigits, "%s vs %s", a, b)
			s.Require().Equal(ab.CorrectPositions, ba.CorrectPositions, "%s vs %s", a, b)
		}
	}
}

func isFromDigits(s, digits string) bool {
	for _, r := range s {
		found := false
		for _, d := range digits {
			if r == d {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
