package main

import "github.com/theirongolddev/spendvibe/cmd"

func main() {
	cmd.Execute()
}
