package main

import "github.com/matthieukhl/buildright/internal/cmd"

func main() {
	cmd.Execute()
}
