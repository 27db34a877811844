package main

import "github.com/odooup/odooup/cmd"

func main() {
	cmd.Execute()
}
