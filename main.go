package main

import (
	_ "embed"

	"github.com/Global-Edge-English/anki-connect/cmd"
)

//go:embed config/config.yaml
var c string

func main() {
	cmd.Execute(c)
}
