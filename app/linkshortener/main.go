package main

import "github.com/superj80820/link-shortener/app/linkshortener/cmd"

func main() {
	cmd.Execute()
}
