package main

import "github.com/melaina/hive-monitor/cmd/hive-sms/cmd"

func main() {
	cmd.Execute()
}
