package testutil

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
)

// StartRedis runs an in-process redis for the duration of the test and
// returns it with a redis:// URL pointing at it.
func StartRedis(t testing.TB) (*miniredis.Miniredis, string) {
	t.Helper()
	srv := miniredis.RunT(t)
	return srv, "redis://" + srv.Addr() + "/0"
}
