package main

import "github.com/jmehdipour/content-gateway/cmd"

func main() {
	cmd.Execute()
}
