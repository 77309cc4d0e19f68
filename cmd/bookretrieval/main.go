package main

import "github.com/trungkien2003ntk/BookRetrieval/internal/cli"

func main() {
	cli.Execute()
}
