package testlog

import (
	"testing"

	"github.com/danmuck/mcwire/internal/logging"
	logs "github.com/danmuck/mcwire/internal/logs"
)

func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	logs.Infof("test=%s", t.Name())
}
