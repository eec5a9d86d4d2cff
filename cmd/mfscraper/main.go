package main

import (
	"mfscraper/cmd/mfscraper/commands"
	"mfscraper/internal/components/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
