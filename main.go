package main

import "github.com/Ahmed-Sermani/retweetrank/cmd"

func main() {
	cmd.Execute()
}
