package main

import (
	"crowdwatch/cmd"
)

func main() {
	cmd.Execute()
}
