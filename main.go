package main

import "datarec/cmd"

func main() {
	cmd.Execute()
}
