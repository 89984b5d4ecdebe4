package main

import (
	cmd "github.com/mindfuljournal/analyzer/cmd/analyzer"
	"github.com/mindfuljournal/analyzer/internal"
)

var log = internal.GetLogger()

func main() {
	log.Info("Starting analyzer")
	cmd.Execute()
}
