package models

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CounterModelSuite struct {
	suite.Suite
}

func TestCounterModelSuite(t *testing.T) {
	suite.Run(t, new(CounterModelSuite))
}

func (s *CounterModelSuite) TestAllocate() {
	s.Run("first id issued is 1", func() {
		c := &Counter{Kind: CounterPosts}
		s.Equal(uint64(1), c.Allocate())
	})

	s.Run("ids are strictly increasing", func() {
		c := &Counter{Kind: CounterComments}
		prev := uint64(0)
		for range 10 {
			next := c.Allocate()
			s.Greater(next, prev)
			prev = next
		}
		s.Equal(uint64(10), c.Count)
	})
}
