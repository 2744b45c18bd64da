package main

import "github.com/Digital-Shane/bangumi-tidy/internal/cmd"

func main() {
	cmd.Execute()
}
