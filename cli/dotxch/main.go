package main

import "github.com/everFinance/dotxch/cli/dotxch/cmd"

func main() {
	cmd.Execute()
}
