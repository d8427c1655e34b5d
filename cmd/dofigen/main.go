package main

import (
	"os"

	"github.com/dofigen/dofigen-go/cmd/dofigen/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
