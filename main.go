package main

import "github.com/dentelia/dentelia_backend/cmd"

func main() {
	cmd.Execute()
}
