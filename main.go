package main

import "animeku/cmd"

func main() {
	cmd.Execute()
}
