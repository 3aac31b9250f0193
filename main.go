package main

import "url-vetting/cmd"

func main() {
	cmd.Execute()
}
