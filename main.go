package main

import "chirpter-segmenter/internal/cli"

func main() {
	cli.Execute()
}
