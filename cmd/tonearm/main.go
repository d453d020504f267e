package main

import "github.com/tessro/tonearm/internal/cli"

func main() {
	cli.Execute()
}
