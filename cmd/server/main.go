package main

import "logvault/internal/app/server"

func main() {
	server.Run()
}
