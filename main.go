package main

import "market-tips/cmd"

func main() {
	cmd.Execute()
}
