package main

import "presenced/server"

func main() {
	server.Main()
}
