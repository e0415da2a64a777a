package main

import "github.com/meridianlabs/meridian-desk/cmd"

func main() {
	cmd.Execute()
}
