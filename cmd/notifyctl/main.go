package main

import (
	"log"

	_ "time/tzdata"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/cmd/notifyctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
