package main

import (
	"log"

	"github.com/ChaoticConundrum/zparcel/cmd/zparcel/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
