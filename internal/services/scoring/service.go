package scoring

import "github.com/mcoot/passcode-go/internal/model"

// Result holds the match statistics for one guess against a secret
type Result struct {
	CorrectDigits    int
	CorrectPositions int
}

// IsWin returns true if every position matched
func (r Result) IsWin() bool {
	return r.CorrectPositions == model.NumberLength
}

// Service scores guesses against secrets
type Service struct{}

// New creates a new scoring Service
func New() *Service {
	return &Service{}
}

// Score compares a guess with a secret. Both must already be validated as
// model.NumberLength decimal digits.
//
// CorrectPositions counts index-aligned matches. CorrectDigits counts digit
// values shared by both numbers, capped by how often each value occurs in
// either, so "1111" against "1123" has two correct digits, not four.
func (s *Service) Score(secret, guess string) Result {
	var secretCounts, guessCounts [10]int
	var result Result

	for i := 0; i < model.NumberLength; i++ {
		if secret[i] == guess[i] {
			result.CorrectPositions++
		}
		secretCounts[secret[i]-'0']++
		guessCounts[guess[i]-'0']++
	}

	for d := 0; d < 10; d++ {
		result.CorrectDigits += min(secretCounts[d], guessCounts[d])
	}

	return result
}

// ServiceInterface defines the interface for the scoring service
type ServiceInterface interface {
	Score(secret, guess string) Result
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
