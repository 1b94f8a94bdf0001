package main

import "github.com/gaurav-prasanna/presspipe/cmd"

func main() {
	cmd.Execute()
}
