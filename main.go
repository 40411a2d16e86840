package main

import "github.com/WilliamWachholz/CameraTimeCard/cmd"

func main() {
	cmd.Execute()
}
