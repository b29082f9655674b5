package client

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventLogRecentReturnsNewestLast(t *testing.T) {
	l := NewEventLog()
	l.Add("first")
	l.Add("second")
	l.Add("third")

	require.Equal(t, []string{"second", "third"}, l.Recent(2))
}

func TestEventLogEvictsOldestPastCapacity(t *testing.T) {
	l := NewEventLog()
	for i := 0; i < eventLogCapacity+10; i++ {
		l.Add(fmt.Sprintf("line-%d", i))
	}

	recent := l.Recent(eventLogCapacity + 10)
	require.Len(t, recent, eventLogCapacity)
	require.Equal(t, "line-10", recent[0])
}
