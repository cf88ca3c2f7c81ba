package main

import "github.com/dbsmedya/minebench/cmd/minebench/cmd"

func main() {
	cmd.Execute()
}
