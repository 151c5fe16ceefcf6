package main

import "github.com/dzjyyds666/tomlfmt/cmd"

func main() {
	cmd.Execute()
}
