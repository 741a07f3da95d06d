package main

import "github.com/marianecozta/Pomodoro/cmd"

func main() {
	cmd.Execute()
}
