package main

import (
	"github.com/0x4d31/llmtester/internal/app"
	cblog "github.com/charmbracelet/log"
)

func main() {
	a := &app.App{}
	if err := a.Run(); err != nil {
		cblog.Fatal(err)
	}
}
