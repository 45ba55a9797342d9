package main

import "github.com/melaina/hive-monitor/cmd/hive-weather/cmd"

func main() {
	cmd.Execute()
}
