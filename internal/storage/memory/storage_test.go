package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/passcode-go/internal/model"
	"github.com/mcoot/passcode-go/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.Store = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TestReturnedGameIsACopy() {
	game := s.CreateGame("game_a", baseTimeForMemory)

	got, err := s.storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	got.Status = model.GameStatusCompleted
	got.Player1.Name = "Mallory"

	again, err := s.storage.GetGame(s.Ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(model.GameStatusWaiting, again.Status)
	s.Equal("Alice", again.Player1.Name)
}

var baseTimeForMemory = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
