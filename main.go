package main

import (
	"os"

	"github.com/kaspanet/stacklab/app"
)

func main() {
	os.Exit(app.StartApp())
}
