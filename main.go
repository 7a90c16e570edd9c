package main

import "github.com/focushive/hivetimer/cmd"

func main() {
	cmd.Execute()
}
