package main

import "github.com/rohan4324/Furever-App-sub000/internal/cli"

func main() {
	cli.Execute()
}
