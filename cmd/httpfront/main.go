package main

import "github.com/indigo-web/httpfront/cmd/httpfront/cmd"

func main() {
	cmd.Execute()
}
