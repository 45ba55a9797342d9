package main

import "github.com/melaina/hive-monitor/cmd/hive-position/cmd"

func main() {
	cmd.Execute()
}
