package interpreter

import (
	"github.com/kaspanet/stacklab/infrastructure/logger"
)

var log = logger.RegisterSubSystem("SCRP")
