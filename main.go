package main

import (
	"github.com/dszqbsm/gascan/cmd"
)

func main() {
	cmd.Execute()
}
