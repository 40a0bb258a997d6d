package main

import "github.com/sarchlab/ethersim/cmd/ethersim/cmd"

func main() {
	cmd.Execute()
}
