package main

import "github.com/oshokin/auto-watering/cmd/auto-watering/cmd"

func main() {
	cmd.Execute()
}
