package main

import "scorevid/cmd"

func main() {
	cmd.Execute()
}
