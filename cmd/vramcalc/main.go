package main

import "vram-calculator/api/cli"

func main() {
	cli.Execute()
}
