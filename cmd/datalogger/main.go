package main

import "data_logger/internal/cli"

// @title        Data Logger API
// @version      1.0
// @description  Serial sensor data logger: pick a port, log distance/command readings, export CSV.
// @BasePath     /
func main() {
	cli.Execute()
}
