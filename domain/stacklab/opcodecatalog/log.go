package opcodecatalog

import (
	"github.com/kaspanet/stacklab/infrastructure/logger"
)

var log = logger.RegisterSubSystem("CTLG")
