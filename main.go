package main

import "github.com/klytics/sheetviz/cmd"

func main() {
	cmd.Execute()
}
