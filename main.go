package main

import (
	"os"

	"chatbot_ui_e2e/presentation/terminal"
)

func main() {
	os.Exit(terminal.Execute())
}
