package main

import "github.com/vytor/flashstudy/internal/cli"

func main() {
	cli.Execute()
}
