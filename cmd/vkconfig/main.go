package main

import "github.com/aalvaropc/vkconfig/internal/cli"

func main() {
	cli.Execute()
}
