// Copyright (C) 2024  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package storage

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/lukasdietrich/briefsend/internal/models"
)

func TestCheckpointOptionsFromViper(t *testing.T) {
	viper.Set("storage.checkpoint.filename", "/var/lib/briefsend/checkpoint.json")

	expected := CheckpointOptions{
		Filename: "/var/lib/briefsend/checkpoint.json",
	}
	actual := CheckpointOptionsFromViper()
	assert.Equal(t, expected, actual)
}

func TestCheckpointsTestSuite(t *testing.T) {
	suite.Run(t, new(CheckpointsTestSuite))
}

type CheckpointsTestSuite struct {
	baseFileystemTestSuite

	checkpoints Checkpoints
}

func (s *CheckpointsTestSuite) SetupTest() {
	s.baseFileystemTestSuite.SetupTest()
	s.checkpoints = NewCheckpoints(s.fs, CheckpointOptions{Filename: "/test/data/checkpoint.json"})
}

func (s *CheckpointsTestSuite) TestLoadMissing() {
	progress, err := s.checkpoints.Load(context.TODO())
	s.Assert().Equal(ErrNoCheckpoint, err)
	s.Assert().Nil(progress)
}

func (s *CheckpointsTestSuite) TestLoadCorrupt() {
	s.requireWrite("/test/data/checkpoint.json", "{not json")

	_, err := s.checkpoints.Load(context.TODO())
	s.Assert().Error(err)
	s.Assert().NotEqual(ErrNoCheckpoint, err)
}

func (s *CheckpointsTestSuite) TestSaveLoad() {
	progress := testProgress("a@example.com", "b@example.com")
	progress.Record(models.NewSendResult(progress.AllMessages[0], nil, testNow), testNow)
	progress.InFlight = "b@example.com"

	s.Require().NoError(s.checkpoints.Save(context.TODO(), progress))

	loaded, err := s.checkpoints.Load(context.TODO())
	s.Require().NoError(err)
	s.Assert().Equal(progress, loaded)
	s.assertNotExists("/test/data/checkpoint.json.tmp")
}

func (s *CheckpointsTestSuite) TestSaveReplaces() {
	progress := testProgress("a@example.com")
	s.Require().NoError(s.checkpoints.Save(context.TODO(), progress))

	progress.Record(models.NewSendResult(progress.AllMessages[0], nil, testNow), testNow)
	s.Require().NoError(s.checkpoints.Save(context.TODO(), progress))

	loaded, err := s.checkpoints.Load(context.TODO())
	s.Require().NoError(err)
	s.Assert().Len(loaded.ResultsSoFar, 1)
	s.Assert().Equal(1, loaded.SuccessCount)
}

func (s *CheckpointsTestSuite) TestDelete() {
	s.Require().NoError(s.checkpoints.Save(context.TODO(), testProgress("a@example.com")))
	s.Require().NoError(s.checkpoints.Delete(context.TODO()))
	s.assertNotExists("/test/data/checkpoint.json")

	s.Assert().NoError(s.checkpoints.Delete(context.TODO()))
}
