package main

import "github.com/mabhi256/jmuzzle/cmd"

func main() {
	cmd.Execute()
}
